package llm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleEmbedding(t *testing.T) {
	embedding := SimpleEmbedding("How many open tickets does TechCorp have?")

	require.Len(t, embedding, embeddingDim)

	var nonZero int
	for _, v := range embedding {
		if v != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestSimpleEmbeddingDeterministic(t *testing.T) {
	a := SimpleEmbedding("how many open tickets?")
	b := SimpleEmbedding("how many open tickets?")

	assert.Equal(t, a, b)
}

func TestSimpleEmbeddingDistinguishesQuestions(t *testing.T) {
	a := SimpleEmbedding("how many open tickets does TechCorp have?")
	b := SimpleEmbedding("list enterprise customers by signup date")

	assert.NotEqual(t, a, b)
}

func TestSimpleEmbeddingSimilarity(t *testing.T) {
	ticket1 := SimpleEmbedding("how many open tickets are there?")
	ticket2 := SimpleEmbedding("count of open tickets")
	customer := SimpleEmbedding("which enterprise company signed up most recently?")

	assert.Greater(t, cosine(ticket1, ticket2), cosine(ticket1, customer))
}

func cosine(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func TestSimpleEmbeddingEmptyText(t *testing.T) {
	embedding := SimpleEmbedding("")
	require.Len(t, embedding, embeddingDim)
}
