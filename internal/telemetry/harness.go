package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBufferSize  = 256
	defaultSendTimeout = 5 * time.Second

	EventException = "exception"
)

// Event is a named analytics event with free-form parameters.
type Event struct {
	Name      string         `json:"name"`
	Params    map[string]any `json:"params,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ErrorRecord is the structured form of every captured failure.
type ErrorRecord struct {
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Stack     string         `json:"stack,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
}

// Sink receives forwarded events. Implementations may fail; the harness
// only logs those failures.
type Sink interface {
	Send(ctx context.Context, event Event) error
}

type Option func(*Harness)

func WithSinks(sinks ...Sink) Option {
	return func(h *Harness) {
		h.sinks = append(h.sinks, sinks...)
	}
}

func WithBufferSize(n int) Option {
	return func(h *Harness) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func WithSendTimeout(d time.Duration) Option {
	return func(h *Harness) {
		if d > 0 {
			h.sendTimeout = d
		}
	}
}

// Harness captures errors and events and forwards them to its sinks from a
// single background worker. A nil *Harness is valid and does nothing.
type Harness struct {
	logger      *zap.Logger
	sinks       []Sink
	bufferSize  int
	sendTimeout time.Duration
	now         func() time.Time

	mu      sync.RWMutex
	queue   chan Event
	started bool
	closing bool
	closed  bool

	worker sync.WaitGroup
	tasks  sync.WaitGroup
}

func New(logger *zap.Logger, opts ...Option) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Harness{
		logger:      logger.Named("telemetry"),
		bufferSize:  defaultBufferSize,
		sendTimeout: defaultSendTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.queue = make(chan Event, h.bufferSize)
	return h
}

// Init starts the delivery worker. Calling it more than once is harmless.
func (h *Harness) Init() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started || h.closed {
		return
	}
	h.started = true
	h.worker.Add(1)
	go h.run()
	h.logger.Debug("Telemetry harness started", zap.Int("sinks", len(h.sinks)), zap.Int("buffer", h.bufferSize))
}

// Shutdown waits for detached tasks, stops accepting events and drains the
// queue until ctx expires.
func (h *Harness) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()

	tasksDone := make(chan struct{})
	go func() {
		h.tasks.Wait()
		close(tasksDone)
	}()
	select {
	case <-tasksDone:
	case <-ctx.Done():
		return fmt.Errorf("waiting for detached tasks: %w", ctx.Err())
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	started := h.started
	close(h.queue)
	h.mu.Unlock()

	if !started {
		return nil
	}
	drained := make(chan struct{})
	go func() {
		h.worker.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		h.logger.Debug("Telemetry harness stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining telemetry queue: %w", ctx.Err())
	}
}

func (h *Harness) run() {
	defer h.worker.Done()
	for event := range h.queue {
		h.deliver(event)
	}
}

func (h *Harness) deliver(event Event) {
	for _, sink := range h.sinks {
		h.sendOne(sink, event)
	}
}

func (h *Harness) sendOne(sink Sink, event Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn("Telemetry sink panicked", zap.String("event", event.Name), zap.Any("panic", r))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), h.sendTimeout)
	defer cancel()
	if err := sink.Send(ctx, event); err != nil {
		h.logger.Warn("Failed to forward telemetry event", zap.String("event", event.Name), zap.Error(err))
	}
}

// TrackEvent queues a named event. It never blocks; a full queue drops the event.
func (h *Harness) TrackEvent(name string, params map[string]any) {
	if h == nil {
		return
	}
	now := h.now()
	merged := make(map[string]any, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["timestamp"] = now.UTC().Format(time.RFC3339Nano)
	h.enqueue(Event{Name: name, Params: merged, Timestamp: now})
}

func (h *Harness) enqueue(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.logger.Debug("Telemetry harness closed, dropping event", zap.String("event", event.Name))
		return
	}
	select {
	case h.queue <- event:
	default:
		h.logger.Warn("Telemetry queue full, dropping event", zap.String("event", event.Name))
	}
}

// LogError records err under title, writes it to the local log and forwards
// it as an exception event.
func (h *Harness) LogError(title string, err error, context map[string]any) ErrorRecord {
	message := "<nil>"
	if err != nil {
		message = err.Error()
	}
	return h.record(title, message, "", context)
}

// ReportPanic records a recovered panic value together with its stack.
func (h *Harness) ReportPanic(title string, value any, stack []byte, context map[string]any) ErrorRecord {
	return h.record(title, fmt.Sprint(value), string(stack), context)
}

// ReportResourceError records a failed sub-resource load.
func (h *Harness) ReportResourceError(source string, status int, context map[string]any) ErrorRecord {
	merged := map[string]any{"type": "resource", "source": source, "status": status}
	for k, v := range context {
		merged[k] = v
	}
	return h.record("Resource Loading Error", fmt.Sprintf("Failed to load %s", source), "", merged)
}

func (h *Harness) record(title, message, stack string, context map[string]any) ErrorRecord {
	rec := ErrorRecord{
		Title:   title,
		Message: message,
		Stack:   stack,
		Context: context,
	}
	if h == nil {
		rec.Timestamp = time.Now()
		return rec
	}
	rec.Timestamp = h.now()
	h.Capture(rec)
	return rec
}

// Capture logs and forwards an already-built error record, e.g. one
// reported by a remote client.
func (h *Harness) Capture(rec ErrorRecord) {
	if h == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = h.now()
	}
	fields := []zap.Field{zap.String("message", rec.Message), zap.Any("context", rec.Context)}
	if rec.Stack != "" {
		fields = append(fields, zap.String("stack", rec.Stack))
	}
	h.logger.Error(rec.Title, fields...)

	contextJSON, err := json.Marshal(rec.Context)
	if err != nil {
		h.logger.Warn("Failed to encode error context", zap.Error(err))
		contextJSON = []byte("{}")
	}
	params := map[string]any{
		"description":   rec.Title,
		"fatal":         false,
		"error_message": rec.Message,
		"error_context": string(contextJSON),
	}
	if rec.Stack != "" {
		params["stack"] = rec.Stack
	}
	h.enqueue(Event{Name: EventException, Params: params, Timestamp: rec.Timestamp})
}

// Recover is deferred at the top of a goroutine; it reports a panic and
// lets the goroutine end quietly.
func (h *Harness) Recover(where string) {
	if r := recover(); r != nil {
		h.ReportPanic("Uncaught Panic", r, debug.Stack(), map[string]any{"type": "panic", "where": where})
	}
}

// Go runs fn detached. A returned error or panic is reported instead of
// being lost; Shutdown waits for it to finish. Tasks started once Shutdown
// has begun still run and report but are not waited for.
func (h *Harness) Go(name string, fn func() error) {
	if h == nil {
		go func() { _ = fn() }()
		return
	}
	tracked := h.track()
	go func() {
		if tracked {
			defer h.tasks.Done()
		}
		defer h.Recover(name)
		if err := fn(); err != nil {
			h.LogError("Unhandled Async Error", err, map[string]any{"type": "unhandledrejection", "task": name})
		}
	}()
}

// track registers a detached task unless Shutdown has begun. Add must not
// race with the Wait in Shutdown, so both sides go through h.mu.
func (h *Harness) track() bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closing {
		return false
	}
	h.tasks.Add(1)
	return true
}
