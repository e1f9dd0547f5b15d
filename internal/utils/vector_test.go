package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)

	sim, err = CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-6)

	sim, err = CosineSimilarity([]float32{1, 1}, []float32{-1, -1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-6)

	sim, err = CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, sim)

	_, err = CosineSimilarity(nil, []float32{1})
	assert.ErrorIs(t, err, ErrEmptyVector)
	_, err = CosineSimilarity([]float32{1, 2}, []float32{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRankBySimilarity(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},     // 0.0
		{1, 0.1},   // ~0.995
		{1, 1},     // ~0.707
		{1},        // mismatched, skipped
		{0.9, 0.0}, // 1.0
	}

	ranked := RankBySimilarity(query, candidates, 0.7, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, 4, ranked[0].Index)
	assert.Equal(t, 1, ranked[1].Index)

	all := RankBySimilarity(query, candidates, 0.7, -1)
	assert.Len(t, all, 3)

	assert.Empty(t, RankBySimilarity(query, candidates, 1.1, 3))
}
