package embedding

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shivam0701/Shira-DocMatch/internal/cache"
)

// CachedClient 带向量缓存的客户端
// 命中缓存的句子不再请求底层客户端；缓存读写失败只记录日志，不影响结果
type CachedClient struct {
	client Client
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedClient 创建带缓存的客户端
func NewCachedClient(client Client, c cache.Cache, ttl time.Duration, logger *logrus.Logger) *CachedClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CachedClient{
		client: client,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Name 返回底层模型名称
func (c *CachedClient) Name() string {
	return c.client.Name()
}

// Embed 生成单条文本的向量表示
func (c *CachedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if vectors[0] == nil {
		return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}
	return vectors[0], nil
}

// EmbedBatch 批量生成向量，只为未命中缓存的文本请求底层客户端
func (c *CachedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	model := c.client.Name()

	var missing []string
	var missingIdx []int
	seen := make(map[string][]int)
	for i, text := range texts {
		if text == "" {
			continue
		}
		if idx, ok := seen[text]; ok {
			seen[text] = append(idx, i)
			continue
		}

		vector, found, err := c.cache.Get(ctx, cache.VectorKey(model, text))
		if err != nil {
			c.logger.WithError(err).Warn("Failed to read embedding cache")
		}
		if found {
			results[i] = vector
			seen[text] = []int{i}
			continue
		}

		seen[text] = []int{i}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vectors, err := c.client.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missing) {
			return nil, NewEmbeddingError(ErrCodeBadResponse, "embedding count does not match input count")
		}
		for k, v := range vectors {
			results[missingIdx[k]] = v
			if err := c.cache.Set(ctx, cache.VectorKey(model, missing[k]), v, c.ttl); err != nil {
				c.logger.WithError(err).Warn("Failed to write embedding cache")
			}
		}
	}

	// 重复出现的句子复用第一次的向量
	for _, idx := range seen {
		for _, i := range idx[1:] {
			results[i] = results[idx[0]]
		}
	}

	c.logger.WithFields(logrus.Fields{
		"model":  model,
		"total":  len(texts),
		"missed": len(missing),
	}).Debug("Embedding cache lookup")

	return results, nil
}
