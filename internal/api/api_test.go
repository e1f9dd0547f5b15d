package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/core"
	"yai.app/assessment-assistant/internal/store"
	"yai.app/assessment-assistant/internal/telemetry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (s *recordingSink) Send(_ context.Context, event telemetry.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) named(name string) []telemetry.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []telemetry.Event
	for _, e := range s.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	router  http.Handler
	sink    *recordingSink
	harness *telemetry.Harness
}

// flush stops the harness so every queued event has reached the sink.
func (f *fixture) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.harness.Shutdown(ctx))
}

func newFixture(t *testing.T, opts RouterOptions) *fixture {
	t.Helper()
	return newFixtureWithEvents(t, opts, nil)
}

func newFixtureWithEvents(t *testing.T, opts RouterOptions, events EventLister) *fixture {
	t.Helper()
	sink := &recordingSink{}
	harness := telemetry.New(zap.NewNop(), telemetry.WithSinks(sink))
	harness.Init()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		harness.Shutdown(ctx)
	})
	handler := NewAPIHandler(core.NewAssistantService(nil, nil, nil), harness, events, zap.NewNop())
	return &fixture{router: NewRouter(handler, opts), sink: sink, harness: harness}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, RouterOptions{})
	rec := do(t, f.router, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["assistant_stubbed"])
}

func TestQuestionLists(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	rec := do(t, f.router, http.MethodGet, "/api/assessments/personality", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 12)

	rec = do(t, f.router, http.MethodGet, "/api/assessments/conflict/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 12)
}

func TestScorePersonality(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	body := `{"answers":[7,7,7,7,7,7,7,7,7,7,7,7]}`
	rec := do(t, f.router, http.MethodPost, "/api/assessments/personality/score", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		Type        string         `json:"type"`
		Scores      map[string]int `json:"scores"`
		Description string         `json:"description"`
	}](t, rec)
	assert.Equal(t, "ESTJ", got.Type)
	assert.Equal(t, 12, got.Scores["E"])
	assert.Equal(t, 16, got.Scores["T"])
	assert.NotEmpty(t, got.Description)

	f.flush(t)
	events := f.sink.named("assessment_completed")
	require.Len(t, events, 1)
	assert.Equal(t, "personality", events[0].Params["assessment"])
	assert.Equal(t, "ESTJ", events[0].Params["result"])
}

func TestScorePersonalityPartialAnswers(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	rec := do(t, f.router, http.MethodPost, "/api/assessments/personality/score", `{"answers":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INFP", decode[map[string]any](t, rec)["type"])

	rec = do(t, f.router, http.MethodPost, "/api/assessments/personality/score", `{"answers":[null,4,7]}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestScorePersonalityRejectsBadInput(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	cases := []string{
		`{"answers":[0]}`,
		`{"answers":[8]}`,
		`{"answers":[1,1,1,1,1,1,1,1,1,1,1,1,1]}`,
		`{"answers":"nope"}`,
		`not json`,
	}
	for _, body := range cases {
		rec := do(t, f.router, http.MethodPost, "/api/assessments/personality/score", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, decode[core.ErrorBody](t, rec).Error.Message, body)
	}
}

func TestScoreConflict(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	body := `{"answers":["A","a","A","A","A","A","A","A","A","A","A","A"]}`
	rec := do(t, f.router, http.MethodPost, "/api/assessments/conflict/score", body)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		DominantStyle string         `json:"dominant_style"`
		Scores        map[string]int `json:"scores"`
		Profile       struct {
			Title string `json:"title"`
		} `json:"profile"`
	}](t, rec)
	assert.Equal(t, "compromising", got.DominantStyle)
	assert.Equal(t, 3, got.Scores["competing"])
	assert.Equal(t, 1, got.Scores["collaborating"])
	assert.NotEmpty(t, got.Profile.Title)

	rec = do(t, f.router, http.MethodPost, "/api/assessments/conflict/score", `{"answers":["C"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantStub(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	rec := do(t, f.router, http.MethodPost, "/api/gemini", `{"prompt":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"Hello from DigitalOcean API!"}`, rec.Body.String())

	rec = do(t, f.router, http.MethodPost, "/api/gemini", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsEndpoint(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	rec := do(t, f.router, http.MethodPost, "/api/events", `{"name":"navigation","params":{"to":"chat"}}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, f.router, http.MethodPost, "/api/events", `{"params":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.flush(t)
	events := f.sink.named("navigation")
	require.Len(t, events, 1)
	assert.Equal(t, "chat", events[0].Params["to"])
	assert.Contains(t, events[0].Params, "timestamp")
}

func TestListEvents(t *testing.T) {
	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"navigation", "chatbot_view", "navigation"} {
		_, err := db.RecordEvent(ctx, name, map[string]any{"n": i}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	f := newFixtureWithEvents(t, RouterOptions{}, db)

	rec := do(t, f.router, http.MethodGet, "/api/events?name=navigation&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))
	events := decode[[]store.AnalyticsEvent](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "navigation", events[0].Name)
	assert.Equal(t, float64(2), events[0].Params["n"])

	rec = do(t, f.router, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Total-Count"))
	assert.Len(t, decode[[]store.AnalyticsEvent](t, rec), 3)

	rec = do(t, f.router, http.MethodGet, "/api/events?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEventsUnregisteredWithoutStore(t *testing.T) {
	f := newFixture(t, RouterOptions{})
	rec := do(t, f.router, http.MethodGet, "/api/events", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestErrorsEndpoint(t *testing.T) {
	f := newFixture(t, RouterOptions{})

	rec := do(t, f.router, http.MethodPost, "/api/errors", `{"title":"API Error","message":"HTTP 500: Internal Server Error","context":{"retryCount":1}}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, f.router, http.MethodPost, "/api/errors", `{"message":"untitled"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.flush(t)
	events := f.sink.named(telemetry.EventException)
	require.Len(t, events, 1)
	assert.Equal(t, "API Error", events[0].Params["description"])
	assert.Contains(t, events[0].Params["error_context"], `"source":"client"`)
}

func TestRecovererReportsPanics(t *testing.T) {
	sink := &recordingSink{}
	harness := telemetry.New(zap.NewNop(), telemetry.WithSinks(sink))
	harness.Init()

	r := chi.NewRouter()
	r.Use(Recoverer(harness))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := do(t, r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, harness.Shutdown(ctx))

	events := sink.named(telemetry.EventException)
	require.Len(t, events, 1)
	assert.Equal(t, "Uncaught Panic", events[0].Params["description"])
	assert.Contains(t, events[0].Params["error_message"], "kaboom")
}

func TestStaticAssetsReportMissingResources(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o644))

	f := newFixture(t, RouterOptions{StaticDir: dir})

	rec := do(t, f.router, http.MethodGet, "/assets/app.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, f.router, http.MethodGet, "/assets/missing.js", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.flush(t)
	events := f.sink.named(telemetry.EventException)
	require.Len(t, events, 1)
	assert.Equal(t, "Resource Loading Error", events[0].Params["description"])
	assert.Equal(t, "Failed to load /assets/missing.js", events[0].Params["error_message"])
}

func TestCORS(t *testing.T) {
	f := newFixture(t, RouterOptions{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/gemini", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req = httptest.NewRequest(http.MethodOptions, "/api/gemini", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
