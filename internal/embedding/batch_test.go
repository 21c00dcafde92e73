package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestBatchClient 测试批处理客户端
func TestBatchClient(t *testing.T) {
	ctx := context.Background()

	t.Run("splits and keeps order", func(t *testing.T) {
		m := new(MockClient)
		m.On("EmbedBatch", mock.Anything, mock.Anything).Return(func(_ context.Context, texts []string) [][]float32 {
			return fakeVectors(texts)
		}, nil)

		texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
		client := NewBatchClient(m, 2, 3)
		vectors, err := client.EmbedBatch(ctx, texts)
		require.NoError(t, err)
		require.Len(t, vectors, len(texts))
		for i, text := range texts {
			assert.Equal(t, float32(len(text)), vectors[i][0])
		}
		m.AssertNumberOfCalls(t, "EmbedBatch", 3)
	})

	t.Run("empty texts get nil", func(t *testing.T) {
		m := new(MockClient)
		m.On("EmbedBatch", mock.Anything, []string{"hello", "world"}).
			Return(fakeVectors([]string{"hello", "world"}), nil).Once()

		vectors, err := NewBatchClient(m, 8, 2).EmbedBatch(ctx, []string{"hello", "", "world"})
		require.NoError(t, err)
		require.Len(t, vectors, 3)
		assert.Nil(t, vectors[1])
		assert.Equal(t, float32('w'), vectors[2][1])
		m.AssertExpectations(t)
	})

	t.Run("error propagates", func(t *testing.T) {
		m := new(MockClient)
		m.On("EmbedBatch", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := NewBatchClient(m, 1, 2).EmbedBatch(ctx, []string{"a", "b", "c"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("count mismatch", func(t *testing.T) {
		m := new(MockClient)
		m.On("EmbedBatch", mock.Anything, mock.Anything).Return([][]float32{{1}}, nil)

		_, err := NewBatchClient(m, 4, 1).EmbedBatch(ctx, []string{"a", "b"})
		assert.Equal(t, ErrCodeBadResponse, ErrorCode(err))
	})

	t.Run("nothing to do", func(t *testing.T) {
		m := new(MockClient)
		vectors, err := NewBatchClient(m, 4, 1).EmbedBatch(ctx, nil)
		assert.NoError(t, err)
		assert.Empty(t, vectors)
		m.AssertNotCalled(t, "EmbedBatch", mock.Anything, mock.Anything)
	})
}

func TestSplitIntoBatches(t *testing.T) {
	batches := splitIntoBatches([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches)
	assert.Len(t, splitIntoBatches([]string{"a"}, 0), 1)
}
