package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Shivam0701/Shira-DocMatch/config"
	"github.com/Shivam0701/Shira-DocMatch/internal/cache"
	"github.com/Shivam0701/Shira-DocMatch/internal/document"
	"github.com/Shivam0701/Shira-DocMatch/internal/embedding"
	"github.com/Shivam0701/Shira-DocMatch/internal/logging"
	"github.com/Shivam0701/Shira-DocMatch/internal/services"
)

// 退出码
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// 命令行选项
type options struct {
	Left       string        // 左侧文档路径
	Right      string        // 右侧文档路径
	ConfigFile string        // 配置文件路径
	EnvFile    string        // .env 文件路径
	Timeout    time.Duration // 比较超时时间
	Semantic   string        // 覆盖语义匹配开关：on/off
	Pretty     bool          // 是否缩进输出
}

// errUsage 参数错误
var errUsage = errors.New("invalid arguments")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行一次比较并返回退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// .env 文件是可选的
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "Error: failed to load env file: %v\n", err)
		return exitUsage
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	switch opts.Semantic {
	case "on":
		cfg.Match.EnableSemantic = true
	case "off":
		cfg.Match.EnableSemantic = false
	}

	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer logging.Close(logger)

	if err := compare(ctx, cfg, opts, logger, stdout); err != nil {
		logger.WithError(err).Error("Comparison failed")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if services.IsConfigError(err) || errors.Is(err, errUsage) || errors.Is(err, document.ErrUnsupportedType) {
			return exitUsage
		}
		return exitFailed
	}
	return exitOK
}

// parseFlags 解析命令行参数
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("docmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.Left, "left", "", "Path to the left document")
	fs.StringVar(&opts.Right, "right", "", "Path to the right document")
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	fs.StringVar(&opts.EnvFile, "env", ".env", "Path to .env file")
	fs.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "Comparison timeout")
	fs.StringVar(&opts.Semantic, "semantic", "", "Override semantic matching (on/off)")
	fs.BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	// 允许以位置参数传入两个文件
	if opts.Left == "" && opts.Right == "" && fs.NArg() == 2 {
		opts.Left, opts.Right = fs.Arg(0), fs.Arg(1)
	}
	if opts.Left == "" || opts.Right == "" {
		return opts, fmt.Errorf("%w: both -left and -right are required", errUsage)
	}
	if opts.Semantic != "" && opts.Semantic != "on" && opts.Semantic != "off" {
		return opts, fmt.Errorf("%w: -semantic must be on or off", errUsage)
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("%w: -timeout must be positive", errUsage)
	}
	return opts, nil
}

// compare 读取两个文件，执行比较并输出JSON报告
func compare(ctx context.Context, cfg *config.Config, opts options, logger *logrus.Logger, out io.Writer) error {
	left, leftFormat, err := readDocument(cfg, opts.Left)
	if err != nil {
		return err
	}
	right, rightFormat, err := readDocument(cfg, opts.Right)
	if err != nil {
		return err
	}

	serviceOpts := []services.CompareOption{services.WithLogger(logger)}
	if cfg.Match.EnableSemantic && cfg.Embed.Provider != "" {
		embedder, closer, err := setupEmbedder(cfg, logger)
		if err != nil {
			// 无法创建嵌入客户端时退化为完全匹配与模糊匹配
			logger.WithError(err).Warn("Embedding provider unavailable, semantic matching disabled")
		} else {
			defer closer()
			serviceOpts = append(serviceOpts, services.WithEmbedder(embedder))
		}
	}

	svc, err := services.NewCompareService(cfg.MatchConfig(), serviceOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	report, err := svc.Compare(ctx, services.CompareRequest{
		Left:        left,
		Right:       right,
		LeftFormat:  leftFormat,
		RightFormat: rightFormat,
	})
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"report_id": report.ID,
		"by_type":   report.CountByType(),
	}
	if best, err := report.BestMatch(); err == nil {
		fields["best_type"] = best.Type
		fields["best_score"] = best.Score
	}
	logger.WithFields(fields).Debug("Report ready")

	enc := json.NewEncoder(out)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// readDocument 校验并提取文件文本，返回文本与文档格式
func readDocument(cfg *config.Config, path string) (string, string, error) {
	ext := filepath.Ext(path)
	if !cfg.IsAllowedExtension(ext) {
		return "", "", fmt.Errorf("%w: %s", document.ErrUnsupportedType, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("%w: %s is a directory", errUsage, path)
	}
	if limit := cfg.MaxFileSize(); limit > 0 && info.Size() > limit {
		return "", "", fmt.Errorf("%w: %s exceeds %d MB", errUsage, path, cfg.Document.MaxFileSizeMB)
	}

	parser, err := document.ParserFactory(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", err, path)
	}
	text, err := parser.Parse(path)
	if err != nil {
		return "", "", err
	}
	return text, string(document.DetectContentType(path)), nil
}

// setupEmbedder 根据配置创建嵌入客户端
// 批处理客户端负责拆分请求，启用缓存时再包装一层向量缓存
func setupEmbedder(cfg *config.Config, logger *logrus.Logger) (embedding.Client, func(), error) {
	client, err := embedding.NewClient(cfg.Embed.Provider, cfg.EmbeddingOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	var result embedding.Client = embedding.NewBatchClient(client, cfg.Embed.BatchSize, cfg.Embed.Workers)

	if !cfg.Cache.Enable {
		return result, func() {}, nil
	}

	cacheCfg := cfg.CacheConfig()
	c, err := cache.NewCache(cacheCfg)
	if err != nil {
		// 缓存不可用时仍然可以直接调用模型
		logger.WithError(err).Warn("Vector cache unavailable, continuing without cache")
		return result, func() {}, nil
	}
	closer := func() {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close vector cache")
		}
	}
	return embedding.NewCachedClient(result, c, cacheCfg.DefaultTTL, logger), closer, nil
}
