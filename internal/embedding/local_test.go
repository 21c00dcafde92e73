package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TestHashingClient 测试本地哈希嵌入
func TestHashingClient(t *testing.T) {
	ctx := context.Background()
	client, err := NewHashingClient(WithDimensions(256))
	require.NoError(t, err)

	vectors, err := client.EmbedBatch(ctx, []string{
		"the quick brown fox jumps over the lazy dog",
		"a quick brown fox jumps over a lazy dog",
		"stock markets closed higher on friday",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	for _, v := range vectors {
		assert.Len(t, v, 256)
		assert.InDelta(t, 1.0, cosine(v, v), 1e-5, "vectors are normalized")
	}

	similar := cosine(vectors[0], vectors[1])
	different := cosine(vectors[0], vectors[2])
	t.Logf("similar=%.4f different=%.4f", similar, different)
	assert.Greater(t, similar, different)

	again, err := client.Embed(ctx, "the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)
	assert.Equal(t, vectors[0], again, "embedding is deterministic")

	_, err = client.Embed(ctx, "")
	assert.Equal(t, ErrCodeEmptyInput, ErrorCode(err))

	_, err = NewHashingClient(WithDimensions(0))
	assert.Error(t, err)
}
