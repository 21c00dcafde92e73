package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Shivam0701/Shira-DocMatch/internal/cache"
)

// TestCachedClient 测试带缓存的客户端
func TestCachedClient(t *testing.T) {
	ctx := context.Background()

	newCache := func(t *testing.T) cache.Cache {
		c, err := cache.NewMemoryCache(cache.DefaultConfig())
		require.NoError(t, err)
		return c
	}

	t.Run("second call served from cache", func(t *testing.T) {
		m := new(MockClient)
		m.On("Name").Return("mini")
		m.On("EmbedBatch", mock.Anything, []string{"alpha", "beta"}).
			Return(fakeVectors([]string{"alpha", "beta"}), nil).Once()
		m.On("EmbedBatch", mock.Anything, []string{"gamma"}).
			Return(fakeVectors([]string{"gamma"}), nil).Once()

		client := NewCachedClient(m, newCache(t), time.Hour, nil)
		assert.Equal(t, "mini", client.Name())

		first, err := client.EmbedBatch(ctx, []string{"alpha", "beta", "alpha"})
		require.NoError(t, err)
		require.Len(t, first, 3)
		assert.Equal(t, first[0], first[2], "duplicates reuse the same vector")

		second, err := client.EmbedBatch(ctx, []string{"beta", "gamma", "alpha"})
		require.NoError(t, err)
		assert.Equal(t, first[1], second[0])
		assert.Equal(t, first[0], second[2])
		assert.Equal(t, float32(len("gamma")), second[1][0])

		m.AssertExpectations(t)
	})

	t.Run("provider error", func(t *testing.T) {
		m := new(MockClient)
		m.On("Name").Return("mini")
		m.On("EmbedBatch", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

		_, err := NewCachedClient(m, newCache(t), time.Hour, nil).EmbedBatch(ctx, []string{"x"})
		assert.Error(t, err)
	})

	t.Run("single embed", func(t *testing.T) {
		m := new(MockClient)
		m.On("Name").Return("mini")
		m.On("EmbedBatch", mock.Anything, []string{"one"}).Return(fakeVectors([]string{"one"}), nil).Once()

		client := NewCachedClient(m, newCache(t), 0, nil)
		v, err := client.Embed(ctx, "one")
		require.NoError(t, err)
		assert.Equal(t, float32(3), v[0])

		_, err = client.Embed(ctx, "")
		assert.Equal(t, ErrCodeEmptyInput, ErrorCode(err))
	})
}
