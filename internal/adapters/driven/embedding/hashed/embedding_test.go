package hashed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lekesiz/netz-rag/internal/core/domain"
)

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Python training costs 3500 euros")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Python training costs 3500 euros")
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical input must yield bit-identical vectors")
}

func TestEmbed_Normalized(t *testing.T) {
	svc := NewEmbeddingService(0)

	tests := []string{
		"hello world",
		"Formation Python avancée",
		"a",
		"one two three four five six seven eight nine ten",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			vec, err := svc.Embed(context.Background(), text)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, l2norm(vec), 1e-5)
		})
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	svc := NewEmbeddingService(0)

	for _, text := range []string{"", "   ", "\t\n", "!!! ??? ..."} {
		vec, err := svc.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Len(t, vec, domain.EmbeddingDimensions)
		assert.Zero(t, l2norm(vec), "empty input must yield the zero vector")
	}
}

func TestEmbed_DistinctTexts(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Python training costs 3500 euros")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Excel training costs 1200 euros")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestEmbed_SimilarityOrdering(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "Python price")
	require.NoError(t, err)
	python, err := svc.Embed(ctx, "Python training costs 3500 euros")
	require.NoError(t, err)
	excel, err := svc.Embed(ctx, "Excel training costs 1200 euros")
	require.NoError(t, err)

	assert.Greater(t, dot(query, python), dot(query, excel),
		"shared token must rank the Python document higher")
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	texts := []string{"first document", "second document", ""}
	vecs, err := svc.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))

	for i, text := range texts {
		single, err := svc.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, vecs[i], "batch must equal per-text embedding")
	}
}

func TestDimensions(t *testing.T) {
	assert.Equal(t, domain.EmbeddingDimensions, NewEmbeddingService(0).Dimensions())
	assert.Equal(t, 128, NewEmbeddingService(128).Dimensions())
}

func l2norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
