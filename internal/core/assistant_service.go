package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// StubReplyText is what the assistant route answers when no model is configured.
const StubReplyText = "Hello from DigitalOcean API!"

// Generator produces the assistant's answer to a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever supplies reference passages for a prompt.
type Retriever interface {
	GetRelevantContext(ctx context.Context, query string) (string, error)
}

// Reply is the status and JSON body the assistant route writes.
type Reply struct {
	Status int
	Body   any
}

type StubBody struct {
	Reply string `json:"reply"`
}

type ResponseBody struct {
	Response string `json:"response"`
}

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

type AssistantService struct {
	llm    Generator
	rag    Retriever
	logger *zap.Logger
}

// NewAssistantService wires the backend. A nil llm keeps the fixed stub
// reply; a nil rag answers without reference material.
func NewAssistantService(llm Generator, rag Retriever, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssistantService{llm: llm, rag: rag, logger: logger.Named("assistant")}
}

func (s *AssistantService) Stubbed() bool {
	return s.llm == nil
}

func (s *AssistantService) Reply(ctx context.Context, prompt string) Reply {
	if s.llm == nil {
		return Reply{Status: http.StatusOK, Body: StubBody{Reply: StubReplyText}}
	}

	text, err := s.llm.Generate(ctx, s.buildPrompt(ctx, prompt))
	if err != nil {
		status := HTTPStatusFromError(err)
		s.logger.Error("Assistant generation failed", zap.Int("status", status), zap.Error(err))
		return Reply{Status: status, Body: ErrorBody{Error: ErrorDetail{Message: "The assistant could not generate a reply."}}}
	}
	return Reply{Status: http.StatusOK, Body: ResponseBody{Response: text}}
}

func (s *AssistantService) buildPrompt(ctx context.Context, prompt string) string {
	if s.rag == nil {
		return prompt
	}
	reference, err := s.rag.GetRelevantContext(ctx, prompt)
	if err != nil {
		// Retrieval is an enhancement; answer without it.
		s.logger.Warn("Failed to get relevant context, proceeding without it", zap.Error(err))
		return prompt
	}
	if strings.TrimSpace(reference) == "" {
		return prompt
	}
	return fmt.Sprintf("Reference material about personality types and conflict styles:\n\n--- CONTEXT START ---\n%s\n--- CONTEXT END ---\n\nQuestion: %s", reference, prompt)
}
