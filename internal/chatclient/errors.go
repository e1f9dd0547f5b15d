package chatclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed chat round trip.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindRateLimit ErrorKind = "rate_limit"
	KindServer    ErrorKind = "server"
	KindAuth      ErrorKind = "auth"
	KindUnknown   ErrorKind = "unknown"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrRequestInFlight = errors.New("a request is already in flight")
)

// HTTPError is returned for any non-2xx response from the chat endpoint.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// APIError is a 2xx response whose body carries an {error} payload.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError wraps a failure to reach the endpoint at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "chat request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Classify maps a chat failure onto the error taxonomy.
func Classify(err error) ErrorKind {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindNetwork
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code == http.StatusTooManyRequests:
			return KindRateLimit
		case code >= http.StatusInternalServerError:
			return KindServer
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return KindAuth
		}
	}
	return KindUnknown
}

// UserMessage is the sentence shown in the transcript for this kind.
func (k ErrorKind) UserMessage() string {
	switch k {
	case KindNetwork:
		return "Unable to connect to our services. Please check your internet connection and try again."
	case KindRateLimit:
		return "Too many requests. Please wait a moment before trying again."
	case KindServer:
		return "Our services are temporarily unavailable. Please try again in a few minutes."
	case KindAuth:
		return "Authentication failed. Please refresh the page and try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// Retryable reports whether the transcript offers a one-step resend.
func (k ErrorKind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

func errorStatus(err error) (int, string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, httpErr.Status
	}
	return 0, ""
}
