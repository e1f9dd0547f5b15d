package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/assessment"
	"yai.app/assessment-assistant/internal/core"
	"yai.app/assessment-assistant/internal/store"
	"yai.app/assessment-assistant/internal/telemetry"
)

const (
	maxBodyBytes      = 64 << 10
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// EventLister reads back persisted analytics events.
type EventLister interface {
	ListEvents(ctx context.Context, name string, limit int) ([]store.AnalyticsEvent, error)
	CountEvents(ctx context.Context, name string) (int, error)
}

type APIHandler struct {
	assistant *core.AssistantService
	harness   *telemetry.Harness
	events    EventLister
	logger    *zap.Logger
}

// NewAPIHandler wires the handlers. events may be nil, which leaves the
// event listing route unregistered.
func NewAPIHandler(assistant *core.AssistantService, harness *telemetry.Harness, events EventLister, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{assistant: assistant, harness: harness, events: events, logger: logger.Named("api")}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, core.ErrorBody{Error: core.ErrorDetail{Message: message}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "assistant_stubbed": h.assistant.Stubbed()})
}

func (h *APIHandler) PersonalityQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assessment.PersonalityQuestions())
}

type ScorePersonalityRequest struct {
	Answers []*int `json:"answers"`
}

type ScorePersonalityResponse struct {
	assessment.PersonalityResult
	Description string `json:"description"`
}

func (h *APIHandler) ScorePersonalityHandler(w http.ResponseWriter, r *http.Request) {
	var req ScorePersonalityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	questions := assessment.PersonalityQuestions()
	if len(req.Answers) > len(questions) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Expected at most %d answers, got %d", len(questions), len(req.Answers)))
		return
	}

	answers := make(map[int]int, len(req.Answers))
	for i, a := range req.Answers {
		if a == nil {
			continue
		}
		if !assessment.ValidLikert(*a) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Answer %d must be between %d and %d", i+1, assessment.MinLikert, assessment.MaxLikert))
			return
		}
		answers[i] = *a
	}

	result := assessment.ScorePersonality(questions, answers)
	h.harness.TrackEvent("assessment_completed", map[string]any{
		"assessment": "personality",
		"result":     result.Type,
		"answered":   len(answers),
	})
	writeJSON(w, http.StatusOK, ScorePersonalityResponse{
		PersonalityResult: result,
		Description:       assessment.DescribeType(result.Type),
	})
}

func (h *APIHandler) ConflictQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assessment.ConflictQuestions())
}

type ScoreConflictRequest struct {
	Answers []*assessment.Choice `json:"answers"`
}

type ScoreConflictResponse struct {
	assessment.ConflictResult
	Profile assessment.StyleProfile `json:"profile"`
}

func (h *APIHandler) ScoreConflictHandler(w http.ResponseWriter, r *http.Request) {
	var req ScoreConflictRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	questions := assessment.ConflictQuestions()
	if len(req.Answers) > len(questions) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Expected at most %d answers, got %d", len(questions), len(req.Answers)))
		return
	}

	answers := make(map[int]assessment.Choice, len(req.Answers))
	for i, a := range req.Answers {
		if a == nil {
			continue
		}
		choice := assessment.Choice(strings.ToUpper(string(*a)))
		if !choice.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Answer %d must be \"A\" or \"B\"", i+1))
			return
		}
		answers[i] = choice
	}

	result := assessment.ScoreConflict(questions, answers)
	profile, _ := assessment.DescribeStyle(result.DominantStyle)
	h.harness.TrackEvent("assessment_completed", map[string]any{
		"assessment": "conflict",
		"result":     string(result.DominantStyle),
		"answered":   len(answers),
	})
	writeJSON(w, http.StatusOK, ScoreConflictResponse{ConflictResult: result, Profile: profile})
}

type PromptRequest struct {
	Prompt string `json:"prompt"`
}

func (h *APIHandler) AssistantHandler(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt cannot be empty")
		return
	}

	reply := h.assistant.Reply(r.Context(), req.Prompt)
	writeJSON(w, reply.Status, reply.Body)
}

type EventRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// EventsHandler accepts client-side analytics events.
func (h *APIHandler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Event name is required")
		return
	}
	h.harness.TrackEvent(req.Name, req.Params)
	w.WriteHeader(http.StatusAccepted)
}

// ListEventsHandler returns recent analytics events, newest first. A name
// filter also reports the stored total in X-Total-Count.
func (h *APIHandler) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}

	name := r.URL.Query().Get("name")
	events, err := h.events.ListEvents(r.Context(), name, limit)
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if name != "" {
		total, err := h.events.CountEvents(r.Context(), name)
		if err != nil {
			h.logger.Error("Failed to count events", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to list events")
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
	}
	if events == nil {
		events = []store.AnalyticsEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ErrorsHandler accepts error records captured by clients.
func (h *APIHandler) ErrorsHandler(w http.ResponseWriter, r *http.Request) {
	var rec telemetry.ErrorRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if rec.Title == "" {
		writeError(w, http.StatusBadRequest, "Error title is required")
		return
	}
	if rec.Context == nil {
		rec.Context = map[string]any{}
	}
	rec.Context["source"] = "client"
	h.harness.Capture(rec)
	w.WriteHeader(http.StatusAccepted)
}
