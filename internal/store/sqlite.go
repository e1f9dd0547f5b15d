package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"yai.app/assessment-assistant/internal/telemetry"
)

// Embedder turns a passage into its embedding vector.
type Embedder func(ctx context.Context, text string) ([]float32, error)

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(dataSourceName string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger.Named("store")}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS analytics_events (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        params_json TEXT NOT NULL DEFAULT '{}',
        occurred_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_analytics_events_name ON analytics_events (name, occurred_at);

    CREATE TABLE IF NOT EXISTS knowledge_chunks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        content TEXT NOT NULL,
        embedding_json TEXT -- Storing as JSON string of []float32
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Send persists a telemetry event, making the store usable as a harness sink.
func (s *SQLiteStore) Send(ctx context.Context, event telemetry.Event) error {
	_, err := s.RecordEvent(ctx, event.Name, event.Params, event.Timestamp)
	return err
}

// Analytics event methods
func (s *SQLiteStore) RecordEvent(ctx context.Context, name string, params map[string]any, occurredAt time.Time) (*AnalyticsEvent, error) {
	if params == nil {
		params = map[string]any{}
	}
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event params: %w", err)
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	event := &AnalyticsEvent{
		ID:         uuid.NewString(),
		Name:       name,
		Params:     params,
		ParamsJSON: string(paramsBytes),
		OccurredAt: occurredAt.UTC(),
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO analytics_events (id, name, params_json, occurred_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.ExecContext(ctx, event.ID, event.Name, event.ParamsJSON, event.OccurredAt); err != nil {
		return nil, fmt.Errorf("failed to execute event insert: %w", err)
	}
	return event, nil
}

// ListEvents returns the most recent events, newest first. An empty name
// matches every event.
func (s *SQLiteStore) ListEvents(ctx context.Context, name string, limit int) ([]AnalyticsEvent, error) {
	query := "SELECT id, name, params_json, occurred_at FROM analytics_events"
	args := []any{}
	if name != "" {
		query += " WHERE name = ?"
		args = append(args, name)
	}
	query += " ORDER BY occurred_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []AnalyticsEvent
	for rows.Next() {
		var event AnalyticsEvent
		if err := rows.Scan(&event.ID, &event.Name, &event.ParamsJSON, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if err := json.Unmarshal([]byte(event.ParamsJSON), &event.Params); err != nil {
			s.logger.Warn("Failed to unmarshal event params", zap.String("id", event.ID), zap.Error(err))
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) CountEvents(ctx context.Context, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analytics_events WHERE name = ?", name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Knowledge chunk methods (for RAG)
func (s *SQLiteStore) createKnowledgeChunk(ctx context.Context, chunk *KnowledgeChunk) error {
	embeddingBytes, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	chunk.EmbeddingJSON = string(embeddingBytes)

	res, err := s.db.ExecContext(ctx, "INSERT INTO knowledge_chunks (content, embedding_json) VALUES (?, ?)", chunk.Content, chunk.EmbeddingJSON)
	if err != nil {
		return fmt.Errorf("failed to execute knowledge_chunk insert: %w", err)
	}
	chunk.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetAllKnowledgeChunks(ctx context.Context) ([]KnowledgeChunk, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, content, embedding_json FROM knowledge_chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge_chunks: %w", err)
	}
	defer rows.Close()

	var chunks []KnowledgeChunk
	for rows.Next() {
		var chunk KnowledgeChunk
		var embeddingJSON sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.Content, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge_chunk row: %w", err)
		}
		if embeddingJSON.Valid && embeddingJSON.String != "" {
			if err := json.Unmarshal([]byte(embeddingJSON.String), &chunk.Embedding); err != nil {
				s.logger.Warn("Failed to unmarshal chunk embedding, leaving it empty", zap.Int64("id", chunk.ID), zap.Error(err))
				chunk.Embedding = nil
			}
		} else {
			s.logger.Warn("Empty embedding for knowledge chunk", zap.Int64("id", chunk.ID))
		}
		chunk.EmbeddingJSON = embeddingJSON.String
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) ClearKnowledgeChunks(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM knowledge_chunks"); err != nil {
		return fmt.Errorf("failed to delete knowledge_chunks: %w", err)
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name='knowledge_chunks'")
	if err != nil && !strings.Contains(err.Error(), "no such table") {
		s.logger.Warn("Could not reset sequence for knowledge_chunks", zap.Error(err))
	}
	return nil
}

// IngestKnowledge replaces the knowledge base with the given passages,
// embedding each one. Passages that fail to embed are skipped. interval
// spaces the embedding calls to stay under the provider's rate limit.
func (s *SQLiteStore) IngestKnowledge(ctx context.Context, docs []string, embed Embedder, interval time.Duration) (int, error) {
	if len(docs) == 0 {
		return 0, errors.New("no knowledge documents to ingest")
	}
	if err := s.ClearKnowledgeChunks(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear existing knowledge chunks: %w", err)
	}
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	count := 0
	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case <-ticker.C:
		}

		embedding, err := embed(ctx, doc)
		if err != nil {
			s.logger.Warn("Failed to embed knowledge passage, skipping", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		chunk := KnowledgeChunk{Content: doc, Embedding: embedding}
		if err := s.createKnowledgeChunk(ctx, &chunk); err != nil {
			s.logger.Warn("Failed to store knowledge chunk, skipping", zap.Int("index", i+1), zap.Error(err))
			continue
		}
		count++
		if count%10 == 0 || count == len(docs) {
			s.logger.Info("Ingesting knowledge", zap.Int("done", count), zap.Int("total", len(docs)))
		}
	}
	return count, nil
}
