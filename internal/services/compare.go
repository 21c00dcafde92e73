package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Shivam0701/Shira-DocMatch/internal/document"
	"github.com/Shivam0701/Shira-DocMatch/internal/embedding"
	"github.com/Shivam0701/Shira-DocMatch/internal/matcher"
	"github.com/Shivam0701/Shira-DocMatch/internal/models"
	"github.com/Shivam0701/Shira-DocMatch/internal/reconcile"
)

// CompareRequest 比较请求
type CompareRequest struct {
	Left  string // 左侧文档文本
	Right string // 右侧文档文本

	// 预先计算的句子向量，按句子顺序排列；为空时由嵌入客户端计算
	LeftEmbeddings  [][]float32
	RightEmbeddings [][]float32

	LeftFormat  string // 左侧文档格式，仅用于统计
	RightFormat string // 右侧文档格式，仅用于统计

	Config *matcher.Config // 覆盖服务的默认配置
}

// CompareService 文档比较服务
// 串联预处理、三种匹配器与结果合并，生成比较报告。
// 服务本身无状态，可被多个goroutine同时使用
type CompareService struct {
	config   matcher.Config   // 默认比较配置
	embedder embedding.Client // 嵌入客户端，可为空
	logger   *logrus.Logger   // 日志记录器
}

// CompareOption 比较服务配置选项
type CompareOption func(*CompareService)

// NewCompareService 创建比较服务
// 配置在创建时校验一次，不合法时返回ConfigError
func NewCompareService(cfg matcher.Config, opts ...CompareOption) (*CompareService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	s := &CompareService{
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) CompareOption {
	return func(s *CompareService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEmbedder 设置嵌入客户端，用于在请求未提供向量时计算句子向量
func WithEmbedder(client embedding.Client) CompareOption {
	return func(s *CompareService) {
		s.embedder = client
	}
}

// Config 返回服务的默认配置
func (s *CompareService) Config() matcher.Config {
	return s.config
}

// Compare 比较两个文档
// 配置错误与上下文取消会直接返回错误，不产生部分报告；
// 空文档或无匹配属于正常结果
func (s *CompareService) Compare(ctx context.Context, req CompareRequest) (*models.ComparisonReport, error) {
	cfg := s.config
	if req.Config != nil {
		cfg = *req.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	id := uuid.New().String()
	started := time.Now()
	log := s.logger.WithField("comparison_id", id)

	// 1. 预处理
	pre := document.NewPreprocessor(document.Options{Lowercase: cfg.Lowercase})
	left := pre.Normalize(document.Left, req.Left)
	right := pre.Normalize(document.Right, req.Right)

	log.WithFields(logrus.Fields{
		"left_segments":  len(left.Segments),
		"right_segments": len(right.Segments),
		"left_tokens":    left.WordCount(),
		"right_tokens":   right.WordCount(),
	}).Debug("Documents normalized")

	// 2. 准备句子向量
	leftEmb, rightEmb, err := s.embeddings(ctx, cfg, left, right, req, log)
	if err != nil {
		return nil, err
	}

	// 3. 三种匹配器并行运行，只读共享的文档
	var exact, fuzzy, semantic []matcher.CandidateMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		exact = matcher.FindExact(left, right, cfg.MinExactWords)
		return nil
	})
	g.Go(func() error {
		var err error
		fuzzy, err = matcher.FindFuzzy(gctx, left.Segments, right.Segments, matcher.FuzzyOptions{
			MinRatio: cfg.FuzzyMinRatio,
			MinWords: cfg.FuzzyMinWords,
			Workers:  cfg.Workers,
		})
		return err
	})
	if cfg.EnableSemantic {
		g.Go(func() error {
			var err error
			semantic, err = matcher.FindSemantic(left.Segments, leftEmb, right.Segments, rightEmb, cfg.SemanticThreshold)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("Comparison aborted")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"exact":    len(exact),
		"fuzzy":    len(fuzzy),
		"semantic": len(semantic),
	}).Debug("Candidates collected")

	// 4. 去重、排序、截断
	candidates := make([]matcher.CandidateMatch, 0, len(exact)+len(fuzzy)+len(semantic))
	candidates = append(candidates, exact...)
	candidates = append(candidates, semantic...)
	candidates = append(candidates, fuzzy...)

	set := reconcile.Reconcile(candidates, reconcile.Options{
		TopN:      cfg.TopN,
		Tolerance: cfg.OverlapTolerance,
		Policy:    cfg.DedupPolicy,
	})
	overall := reconcile.OverallScore(set.Retained, left.WordCount(), right.WordCount())

	// 5. 生成报告
	report := &models.ComparisonReport{
		ID:           id,
		OverallScore: round4(overall),
		Matches:      make([]models.MatchRecord, 0, len(set.Matches)),
		Stats: models.Stats{
			LeftWordCount:  len(strings.Fields(req.Left)),
			RightWordCount: len(strings.Fields(req.Right)),
			TotalMatches:   set.Total,
			LeftChars:      utf8.RuneCountInString(req.Left),
			RightChars:     utf8.RuneCountInString(req.Right),
			LeftFormat:     req.LeftFormat,
			RightFormat:    req.RightFormat,
		},
	}
	for _, m := range set.Matches {
		report.Matches = append(report.Matches, models.MatchRecord{
			LeftText:   snippet(left.Slice(m.LeftStart, m.LeftEnd), cfg.SnippetLength),
			LeftStart:  m.LeftStart,
			LeftEnd:    m.LeftEnd,
			RightText:  snippet(right.Slice(m.RightStart, m.RightEnd), cfg.SnippetLength),
			RightStart: m.RightStart,
			RightEnd:   m.RightEnd,
			Type:       string(m.Type),
			Score:      round4(m.Score),
		})
	}

	log.WithFields(logrus.Fields{
		"overall_score": report.OverallScore,
		"total_matches": set.Total,
		"returned":      len(report.Matches),
		"semantic":      cfg.EnableSemantic && leftEmb != nil,
		"duration_ms":   time.Since(started).Milliseconds(),
	}).Info("Comparison completed")

	return report, nil
}

// embeddings 确定两侧句子向量
// 请求中提供的向量优先；否则使用嵌入客户端计算。
// 嵌入服务失败时记录警告并退化为仅完全匹配与模糊匹配
func (s *CompareService) embeddings(
	ctx context.Context,
	cfg matcher.Config,
	left, right *document.Document,
	req CompareRequest,
	log *logrus.Entry,
) ([][]float32, [][]float32, error) {
	if !cfg.EnableSemantic {
		return nil, nil, nil
	}
	if req.LeftEmbeddings != nil || req.RightEmbeddings != nil {
		return req.LeftEmbeddings, req.RightEmbeddings, nil
	}
	if s.embedder == nil || left.IsEmpty() || right.IsEmpty() {
		return nil, nil, nil
	}

	leftTexts := left.SegmentTexts()
	texts := append(leftTexts, right.SegmentTexts()...)
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		log.WithError(err).WithFields(logrus.Fields{
			"model":      s.embedder.Name(),
			"error_code": embedding.ErrorCode(err),
		}).Warn("Embedding provider failed, semantic matching disabled")
		return nil, nil, nil
	}
	if len(vectors) != len(texts) {
		return nil, nil, matcher.NewConfigError("embeddings", len(vectors),
			fmt.Sprintf("provider returned %d vectors for %d segments", len(vectors), len(texts)))
	}

	return vectors[:len(leftTexts)], vectors[len(leftTexts):], nil
}

// IsConfigError 判断错误是否为配置错误
func IsConfigError(err error) bool {
	return errors.Is(err, matcher.ErrInvalidConfig)
}

// snippet 截取原文片段，超过limit个字符时截断并追加省略号
func snippet(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

// round4 保留4位小数
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
