package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/store"
	"yai.app/assessment-assistant/internal/utils"
)

const (
	NumRelevantChunks   = 3   // Number of chunks to retrieve for context
	SimilarityThreshold = 0.6 // Minimum similarity score to consider a chunk relevant
)

// ChunkSource loads the embedded knowledge base.
type ChunkSource interface {
	GetAllKnowledgeChunks(ctx context.Context) ([]store.KnowledgeChunk, error)
}

type RAGService struct {
	embed  store.Embedder
	chunks []store.KnowledgeChunk // In-memory cache of chunks and their embeddings
	logger *zap.Logger
}

func NewRAGService(ctx context.Context, source ChunkSource, embed store.Embedder, logger *zap.Logger) (*RAGService, error) {
	chunks, err := source.GetAllKnowledgeChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge chunks for RAG service: %w", err)
	}
	logger = logger.Named("rag")
	if len(chunks) == 0 {
		logger.Warn("RAG service initialized with no knowledge chunks; run the server with -ingest first")
	} else {
		logger.Info("RAG service initialized", zap.Int("chunks", len(chunks)))
	}

	return &RAGService{embed: embed, chunks: chunks, logger: logger}, nil
}

// GetRelevantContext returns up to NumRelevantChunks passages similar to
// query, separated by blank lines. No match yields an empty string.
func (s *RAGService) GetRelevantContext(ctx context.Context, query string) (string, error) {
	if len(s.chunks) == 0 {
		return "", nil
	}

	queryEmbedding, err := s.embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to get query embedding: %w", err)
	}

	vectors := make([][]float32, len(s.chunks))
	for i, chunk := range s.chunks {
		vectors[i] = chunk.Embedding
	}
	ranked := utils.RankBySimilarity(queryEmbedding, vectors, SimilarityThreshold, NumRelevantChunks)
	if len(ranked) == 0 {
		s.logger.Debug("No relevant chunks found", zap.Float64("threshold", SimilarityThreshold))
		return "", nil
	}

	passages := make([]string, 0, len(ranked))
	for _, r := range ranked {
		passages = append(passages, s.chunks[r.Index].Content)
	}
	s.logger.Debug("Retrieved relevant chunks", zap.Int("count", len(passages)))
	return strings.Join(passages, "\n\n"), nil
}
