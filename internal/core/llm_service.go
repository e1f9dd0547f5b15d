package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const (
	DefaultChatModelName      = "gemini-1.5-flash-latest"
	DefaultEmbeddingModelName = "text-embedding-004"

	assistantSystemInstruction = "You are an AI learning and development assistant. You help people understand " +
		"their personality test results (four-letter types such as INFP or ESTJ) and their conflict-handling style " +
		"(competing, accommodating, avoiding, collaborating, compromising), and you offer career guidance and " +
		"personal development strategies. Keep answers concise, practical and encouraging. " +
		"If reference material is provided, prefer it over general knowledge."
)

type LLMService struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	logger         *zap.Logger
}

func NewLLMService(ctx context.Context, apiKey, chatModel, embeddingModel string, logger *zap.Logger) (*LLMService, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if chatModel == "" {
		chatModel = DefaultChatModelName
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModelName
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &LLMService{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		logger:         logger.Named("llm"),
	}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			s.logger.Warn("Error closing GenAI client", zap.Error(err))
		} else {
			s.logger.Info("GenAI client closed")
		}
	}
}

func (s *LLMService) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding data received from gemini")
	}
	return res.Embedding.Values, nil
}

// Generate answers a single prompt under the assistant's system instruction.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.chatModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(assistantSystemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini GenerateContent failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.logger.Debug("Gemini response part was not text", zap.String("type", fmt.Sprintf("%T", part)))
		}
	}
	if responseText.Len() == 0 {
		return "", errors.New("gemini response contained no text")
	}
	return responseText.String(), nil
}

// HTTPStatusFromError maps a provider failure onto the HTTP status returned
// to chat clients, so their error taxonomy sees rate limits and auth errors.
func HTTPStatusFromError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code > 0 {
		return gErr.Code
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return code
		}
		switch apiErr.GRPCStatus().Code() {
		case codes.ResourceExhausted:
			return http.StatusTooManyRequests
		case codes.Unauthenticated:
			return http.StatusUnauthorized
		case codes.PermissionDenied:
			return http.StatusForbidden
		case codes.InvalidArgument, codes.FailedPrecondition:
			return http.StatusBadRequest
		case codes.Unavailable:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusBadGateway
}
