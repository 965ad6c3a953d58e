// -----------------------------------------------------------------------
// Offline Embedding Service - Deterministic hashed embeddings for local
// development and tests, no network dependency
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/scholar/internal/interfaces"
)

// OfflineEmbedder produces deterministic vectors by hashing token features
// into a fixed-width space. Vectors are L2-normalized so cosine similarity
// behaves sensibly: identical texts score 1.0 and texts sharing tokens score
// higher than unrelated ones. Quality is nowhere near a learned model; it
// exists so the pipeline runs end to end without API keys.
type OfflineEmbedder struct {
	dimension int
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*OfflineEmbedder)(nil)

func NewOfflineEmbedder(dimension int) *OfflineEmbedder {
	return &OfflineEmbedder{dimension: dimension}
}

// Embed hashes each lowercased token into a bucket and accumulates weights.
func (o *OfflineEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vector := make([]float32, o.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(token))
		bucket := int(binary.BigEndian.Uint32(sum[:4]) % uint32(o.dimension))
		sign := float32(1)
		if sum[4]&1 == 1 {
			sign = -1
		}
		vector[bucket] += sign
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}

	return vector, nil
}

func (o *OfflineEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := o.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func (o *OfflineEmbedder) Dimension() int {
	return o.dimension
}
