package llm

import (
	"context"
	"strings"
)

const embeddingDim = 384

// Embed implements deterministic text-based similarity using basic string
// features. Claude does not provide an embeddings endpoint, so a local
// representation is used for nearest-neighbour lookup of past questions.
func (c *ClaudeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return SimpleEmbedding(text), nil
}

// SimpleEmbedding creates a basic vector representation of a question for
// similarity matching. Not a substitute for a real embedding model, but
// stable across calls, which is what the example store needs.
func SimpleEmbedding(text string) []float32 {
	embedding := make([]float32, embeddingDim)

	text = strings.ToLower(text)

	// Feature 0-37: character frequencies
	charCounts := make(map[rune]int)
	for _, char := range text {
		charCounts[char]++
	}

	chars := "abcdefghijklmnopqrstuvwxyz0123456789 ?"
	for i, char := range chars {
		if count, exists := charCounts[char]; exists && len(text) > 0 {
			embedding[i] = float32(count) / float32(len(text))
		}
	}

	// Feature 50+: common customer-support vocabulary
	keywords := []string{
		"customer", "ticket", "open", "closed", "resolved", "pending",
		"priority", "urgent", "high", "low", "medium", "status",
		"email", "chat", "phone", "note", "agent", "interaction",
		"company", "tier", "free", "pro", "enterprise", "signup",
		"count", "how many", "average", "most", "least", "recent",
		"last", "week", "month", "day", "year", "today",
		"duration", "time", "longest", "shortest", "oldest", "newest",
		"tag", "subject", "name", "list", "show", "which", "who",
	}

	for i, keyword := range keywords {
		if i+50 < embeddingDim {
			if strings.Contains(text, keyword) {
				embedding[i+50] = 1.0
			}
		}
	}

	// Structural features
	if len(text) > 0 {
		embedding[150] = float32(len(text)) / 1000.0
		embedding[151] = float32(strings.Count(text, " ")) / float32(len(text))
		embedding[152] = float32(strings.Count(text, "?"))
	}

	// Normalize the vector
	var magnitude float32
	for _, val := range embedding {
		magnitude += val * val
	}
	if magnitude > 0 {
		scale := float32(1.0 / (magnitude + 0.001))
		for i := range embedding {
			embedding[i] *= scale
		}
	}

	return embedding
}
