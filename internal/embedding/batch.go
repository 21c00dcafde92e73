package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
)

// BatchClient 批处理客户端
// 将大量句子拆分为多个小批次，通过工作池并行请求底层客户端，结果保持输入顺序
type BatchClient struct {
	client     Client // 底层嵌入客户端
	batchSize  int    // 每批处理的文本数量
	maxWorkers int    // 最大并行工作线程数
}

// NewBatchClient 创建批处理客户端
func NewBatchClient(client Client, batchSize int, maxWorkers int) *BatchClient {
	if batchSize <= 0 {
		batchSize = 16
	}
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	return &BatchClient{
		client:     client,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
	}
}

// Name 返回底层模型名称
func (p *BatchClient) Name() string {
	return p.client.Name()
}

// Embed 直接调用底层客户端
func (p *BatchClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.client.Embed(ctx, text)
}

// EmbedBatch 分批并行生成向量
// 空文本在请求前被过滤，对应位置返回nil
func (p *BatchClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// 过滤空文本，记录原位置
	positions := make([]int, 0, len(texts))
	filtered := make([]string, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		positions = append(positions, i)
		filtered = append(filtered, text)
	}

	results := make([][]float32, len(texts))
	if len(filtered) == 0 {
		return results, nil
	}

	batches := splitIntoBatches(filtered, p.batchSize)
	if len(batches) == 1 {
		vectors, err := p.embedOne(ctx, 0, batches[0])
		if err != nil {
			return nil, err
		}
		for k, v := range vectors {
			results[positions[k]] = v
		}
		return results, nil
	}

	wp := workerpool.New(p.maxWorkers)
	var (
		mu       sync.Mutex
		firstErr error
	)
	batchVectors := make([][][]float32, len(batches))

	for i, batch := range batches {
		wp.Submit(func() {
			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			vectors, err := p.embedOne(ctx, i, batch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			batchVectors[i] = vectors
		})
	}
	wp.StopWait()

	if firstErr != nil {
		return nil, firstErr
	}

	k := 0
	for _, vectors := range batchVectors {
		for _, v := range vectors {
			results[positions[k]] = v
			k++
		}
	}
	return results, nil
}

// embedOne 处理单个批次并校验返回数量
func (p *BatchClient) embedOne(ctx context.Context, index int, batch []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors, err := p.client.EmbedBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch %d processing error: %w", index, err)
	}
	if len(vectors) != len(batch) {
		return nil, NewEmbeddingError(ErrCodeBadResponse,
			fmt.Sprintf("batch %d: expected %d embeddings, got %d", index, len(batch), len(vectors)))
	}
	return vectors, nil
}

// splitIntoBatches 将文本列表分割成多个批次
func splitIntoBatches(texts []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = 1
	}

	batches := make([][]string, 0, (len(texts)+batchSize-1)/batchSize)
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}
	return batches
}
