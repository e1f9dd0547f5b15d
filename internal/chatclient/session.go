package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"yai.app/assessment-assistant/internal/telemetry"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Status is the connection indicator of a session.
type Status string

const (
	StatusOnline     Status = "online"
	StatusConnecting Status = "connecting"
	StatusError      Status = "error"
)

func (s Status) Label() string {
	switch s {
	case StatusOnline:
		return "AI Assistant Online"
	case StatusConnecting:
		return "Connecting..."
	case StatusError:
		return "Connection Error"
	default:
		return "Unknown Status"
	}
}

const Greeting = "Hello! I'm your AI learning and development assistant. I can help you understand your personality test results, provide career guidance, or discuss personal development strategies. How can I assist you today?"

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`
}

// Session owns one chat transcript and allows a single request at a time.
type Session struct {
	client  Completer
	harness *telemetry.Harness
	now     func() time.Time

	mu           sync.Mutex
	messages     []Message
	input        string
	status       Status
	inFlight     bool
	retryCount   int
	retryPending bool
}

func NewSession(client Completer, harness *telemetry.Harness) *Session {
	s := &Session{
		client:  client,
		harness: harness,
		now:     time.Now,
		status:  StatusOnline,
	}
	s.messages = append(s.messages, s.newMessage(Greeting, SenderBot))
	harness.TrackEvent("chatbot_view", map[string]any{"page_title": "AI Chatbot"})
	return s
}

func (s *Session) newMessage(text string, sender Sender) Message {
	return Message{ID: uuid.NewString(), Text: text, Sender: sender, Timestamp: s.now()}
}

// SendMessage appends text as a user message and waits for the reply. Any
// failure is absorbed into an error message in the transcript; the only
// returned errors are the precondition sentinels.
func (s *Session) SendMessage(ctx context.Context, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Message{}, ErrRequestInFlight
	}
	s.inFlight = true
	s.messages = append(s.messages, s.newMessage(text, SenderUser))
	s.input = ""
	s.status = StatusConnecting
	retryCount := s.retryCount
	retryAttempt := s.retryPending
	s.retryPending = false
	s.mu.Unlock()

	s.harness.TrackEvent("chatbot_message_sent", map[string]any{
		"message_length": len(text),
		"retry_attempt":  retryAttempt,
		"retry_count":    retryCount,
	})

	reply, err := s.client.Complete(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		kind := Classify(err)
		status, statusText := errorStatus(err)
		s.harness.LogError("API Error", err, map[string]any{
			"component":    "ChatBot",
			"action":       "sendMessage",
			"input_length": len(text),
			"retry_count":  retryCount,
			"errorType":    string(kind),
			"status":       status,
			"statusText":   statusText,
		})
		s.status = StatusError
		// An error payload still came back over a successful exchange, which
		// resets the count before this failure is added.
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			s.retryCount = 0
		}
		s.retryCount++

		msg := s.newMessage(kind.UserMessage(), SenderBot)
		msg.IsError = true
		msg.ErrorKind = kind
		msg.Retryable = kind.Retryable()
		s.messages = append(s.messages, msg)

		s.harness.TrackEvent("chatbot_error", map[string]any{
			"error_type":    string(kind),
			"error_message": err.Error(),
			"retry_count":   retryCount,
		})
		return msg, nil
	}

	s.status = StatusOnline
	s.retryCount = 0
	msg := s.newMessage(reply, SenderBot)
	s.messages = append(s.messages, msg)

	s.harness.TrackEvent("chatbot_response_received", map[string]any{
		"response_length": len(reply),
		"success":         true,
	})
	return msg, nil
}

// Retry puts the last user message back into the input and drops the
// trailing error message. It does not resend.
func (s *Session) Retry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight || len(s.messages) < 2 {
		return false
	}

	var lastUser *Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Sender == SenderUser {
			lastUser = &s.messages[i]
			break
		}
	}
	if lastUser == nil {
		return false
	}
	s.input = lastUser.Text

	if last := len(s.messages) - 1; s.messages[last].IsError {
		s.messages = s.messages[:last]
	}
	s.retryPending = true
	return true
}

func (s *Session) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}

func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
