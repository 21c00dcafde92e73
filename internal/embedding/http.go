package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// embeddingRequest OpenAI兼容的嵌入请求
type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
	Dimensions     int      `json:"dimensions,omitempty"`
}

// embeddingResponse OpenAI兼容的嵌入响应
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// HTTPClient 调用OpenAI兼容 /v1/embeddings 接口的客户端
// 适用于OpenAI、DashScope兼容模式以及本地部署的sentence-transformers服务
type HTTPClient struct {
	apiKey     string
	endpoint   string
	model      string
	dimensions int
	maxRetries int
	httpClient *http.Client
}

// NewHTTPClient 创建HTTP嵌入客户端
func NewHTTPClient(opts ...Option) (Client, error) {
	cfg := NewConfig(opts...)
	if cfg.BaseURL == "" {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, "embedding endpoint is required")
	}
	if cfg.Model == "" {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, "embedding model is required")
	}

	return &HTTPClient{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name 返回模型名称
func (c *HTTPClient) Name() string {
	return c.model
}

// Embed 生成单条文本的向量表示
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, NewEmbeddingError(ErrCodeEmptyInput, ErrMsgEmptyInput)
	}

	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch 批量生成文本的向量表示
// 响应中的向量按index放回原位置，数量不一致时返回错误
func (c *HTTPClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqData := embeddingRequest{
		Model:          c.model,
		Input:          texts,
		EncodingFormat: "float",
	}
	// 维度参数仅在明确指定时发送，部分服务不支持该参数
	if c.dimensions > 0 && c.dimensions != DefaultConfig().Dimensions {
		reqData.Dimensions = c.dimensions
	}

	var resp embeddingResponse
	if err := c.sendRequest(ctx, reqData, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, NewEmbeddingError(ErrCodeBadResponse,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	result := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) || result[item.Index] != nil {
			return nil, NewEmbeddingError(ErrCodeBadResponse,
				fmt.Sprintf("invalid embedding index: %d", item.Index))
		}
		result[item.Index] = item.Embedding
	}

	return result, nil
}

// sendRequest 发送API请求并解析响应
// 网络错误、429与5xx响应按指数退避重试
func (c *HTTPClient) sendRequest(ctx context.Context, reqData interface{}, respObj interface{}) error {
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to marshal request: %v", err))
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return NewEmbeddingError(ErrCodeTimeout, ctx.Err().Error())
			case <-time.After(time.Duration(1<<attempt) * 50 * time.Millisecond):
			}
		}

		body, err := c.do(ctx, jsonData)
		if err == nil {
			if err := json.Unmarshal(body, respObj); err != nil {
				return NewEmbeddingError(ErrCodeServerError, fmt.Sprintf("failed to parse response: %v", err))
			}
			return nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return NewEmbeddingError(ErrCodeTimeout, ctx.Err().Error())
		}
		if e, ok := err.(EmbeddingError); ok && !e.Retryable() {
			return err
		}
	}

	return lastErr
}

// do 执行一次HTTP请求，返回成功响应的响应体
func (c *HTTPClient) do(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEmbeddingError(ErrCodeNetworkError, fmt.Sprintf("failed to read response: %v", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewEmbeddingError(ErrCodeInvalidAPIKey, ErrMsgInvalidAPIKey)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewEmbeddingError(ErrCodeRateLimited, ErrMsgRateLimited)
	case resp.StatusCode >= 500:
		return nil, NewEmbeddingError(ErrCodeServerError, errorMessage(resp.StatusCode, body))
	default:
		return nil, NewEmbeddingError(ErrCodeInvalidRequest, errorMessage(resp.StatusCode, body))
	}
}

// errorMessage 从错误响应中提取错误信息
func errorMessage(status int, body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Message != "" {
			return errResp.Error.Message
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return fmt.Sprintf("API error (status %d): %s", status, string(body))
}

func init() {
	RegisterClient("openai", NewHTTPClient)
}
