package embedding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// HashingClient 本地特征哈希嵌入客户端
// 将词与相邻词对哈希到固定维度并做L2归一化，不依赖外部服务。
// 只能反映词汇重叠，不理解语义，用于离线运行与测试
type HashingClient struct {
	dimensions int
}

// NewHashingClient 创建本地哈希嵌入客户端
func NewHashingClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)
	if cfg.Dimensions <= 0 {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, "dimensions must be positive")
	}
	return &HashingClient{dimensions: cfg.Dimensions}, nil
}

// Name 返回模型名称
func (c *HashingClient) Name() string {
	return "hashing"
}

// Embed 生成单条文本的向量表示
func (c *HashingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewEmbeddingError(ErrCodeTimeout, err.Error())
	}
	return c.vector(text), nil
}

// EmbedBatch 批量生成文本的向量表示
func (c *HashingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (c *HashingClient) vector(text string) []float32 {
	v := make([]float32, c.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	add := func(feature string, weight float32) {
		h := xxhash.Sum64String(feature)
		idx := int(h % uint64(c.dimensions))
		// 最高位决定符号，减少碰撞带来的偏差
		if h>>63 == 1 {
			weight = -weight
		}
		v[idx] += weight
	}
	for i, w := range words {
		add(w, 1)
		if i > 0 {
			add(words[i-1]+" "+w, 0.5)
		}
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
	return v
}

func init() {
	RegisterClient("local", NewHashingClient)
}
