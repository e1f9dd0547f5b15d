package store

import "time"

type AnalyticsEvent struct {
	ID         string         `json:"id"` // Using UUID for external ID
	Name       string         `json:"name"`
	Params     map[string]any `json:"params"`
	ParamsJSON string         `json:"-"` // Store as JSON string for DB
	OccurredAt time.Time      `json:"occurred_at"`
}

type KnowledgeChunk struct {
	ID            int64     `json:"id"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"-"` // Don't marshal to JSON response, internal
	EmbeddingJSON string    `json:"-"`
}
