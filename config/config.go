package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Shivam0701/Shira-DocMatch/internal/cache"
	"github.com/Shivam0701/Shira-DocMatch/internal/embedding"
	"github.com/Shivam0701/Shira-DocMatch/internal/logging"
	"github.com/Shivam0701/Shira-DocMatch/internal/matcher"
)

// Config 应用程序配置结构体
type Config struct {
	Match    MatchConfig    `mapstructure:"match"`
	Log      LogConfig      `mapstructure:"log"`
	Embed    EmbedConfig    `mapstructure:"embed"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Document DocumentConfig `mapstructure:"document"`
}

// MatchConfig 比较配置
type MatchConfig struct {
	FuzzyMinRatio     float64 `mapstructure:"fuzzy_min_ratio"`    // 模糊匹配最低相似度
	SemanticThreshold float64 `mapstructure:"semantic_threshold"` // 语义匹配最低余弦相似度
	TopN              int     `mapstructure:"top_n"`              // 返回的匹配数量
	EnableSemantic    bool    `mapstructure:"enable_semantic"`    // 是否启用语义匹配
	Lowercase         bool    `mapstructure:"lowercase"`          // 是否转换为小写
	MinExactWords     int     `mapstructure:"min_exact_words"`    // 完全匹配最少词数
	FuzzyMinWords     int     `mapstructure:"fuzzy_min_words"`    // 参与模糊匹配的句子最少词数
	OverlapTolerance  int     `mapstructure:"overlap_tolerance"`  // 允许的重叠字节数
	DedupPolicy       string  `mapstructure:"dedup_policy"`       // 去重策略：weighted 或 score
	Workers           int     `mapstructure:"workers"`            // 模糊匹配并发数
	SnippetLength     int     `mapstructure:"snippet_length"`     // 报告中片段的最大字符数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	Format     string `mapstructure:"format"`       // json 或 text
	File       string `mapstructure:"file"`         // 日志文件路径
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个文件最大大小
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧文件数量
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧文件保留天数
	Compress   bool   `mapstructure:"compress"`     // 是否压缩旧日志文件
}

// EmbedConfig 向量嵌入模型配置
type EmbedConfig struct {
	Provider   string        `mapstructure:"provider"`    // 提供商：openai, local；为空时不计算向量
	Model      string        `mapstructure:"model"`       // 模型名称
	APIKey     string        `mapstructure:"api_key"`     // API密钥（如果需要）
	Endpoint   string        `mapstructure:"endpoint"`    // API端点
	BatchSize  int           `mapstructure:"batch_size"`  // 批处理大小
	Dimensions int           `mapstructure:"dimensions"`  // 向量维度
	Timeout    time.Duration `mapstructure:"timeout"`     // 请求超时时间
	MaxRetries int           `mapstructure:"max_retries"` // 最大重试次数
	Workers    int           `mapstructure:"workers"`     // 批处理并发数
}

// CacheConfig 向量缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	Prefix   string `mapstructure:"prefix"`   // 键前缀
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// DocumentConfig 文档读取配置
type DocumentConfig struct {
	MaxFileSizeMB     int      `mapstructure:"max_file_size_mb"`   // 单个文件最大大小
	AllowedExtensions []string `mapstructure:"allowed_extensions"` // 允许的文件扩展名
}

// 兼容的环境变量名
var legacyEnv = map[string]string{
	"match.fuzzy_min_ratio":     "FUZZY_MIN_RATIO",
	"match.semantic_threshold":  "SEMANTIC_THRESHOLD",
	"match.top_n":               "TOP_N_MATCHES",
	"match.enable_semantic":     "ENABLE_SEMANTIC",
	"match.lowercase":           "LOWERCASE",
	"embed.model":               "EMBEDDING_MODEL",
	"document.max_file_size_mb": "MAX_FILE_SIZE_MB",
}

// Load 从文件和环境变量加载配置
// configPath为空或文件不存在时使用默认值；环境变量优先于配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			logrus.Warnf("Config file not found at %s, using defaults", configPath)
		}
	}

	// 支持环境变量覆盖，例如 MATCH_TOP_N
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Embed.APIKey = expandEnv(cfg.Embed.APIKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)

	return &cfg, nil
}

// expandEnv 展开 ${VAR} 形式的配置值
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	m := matcher.DefaultConfig()
	v.SetDefault("match.fuzzy_min_ratio", m.FuzzyMinRatio)
	v.SetDefault("match.semantic_threshold", m.SemanticThreshold)
	v.SetDefault("match.top_n", m.TopN)
	v.SetDefault("match.enable_semantic", m.EnableSemantic)
	v.SetDefault("match.lowercase", m.Lowercase)
	v.SetDefault("match.min_exact_words", m.MinExactWords)
	v.SetDefault("match.fuzzy_min_words", m.FuzzyMinWords)
	v.SetDefault("match.overlap_tolerance", m.OverlapTolerance)
	v.SetDefault("match.dedup_policy", m.DedupPolicy)
	v.SetDefault("match.workers", m.Workers)
	v.SetDefault("match.snippet_length", m.SnippetLength)

	l := logging.DefaultConfig()
	v.SetDefault("log.level", l.Level)
	v.SetDefault("log.format", l.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", l.MaxSizeMB)
	v.SetDefault("log.max_backups", l.MaxBackups)
	v.SetDefault("log.max_age_days", l.MaxAgeDays)
	v.SetDefault("log.compress", l.Compress)

	e := embedding.DefaultConfig()
	v.SetDefault("embed.provider", "")
	v.SetDefault("embed.model", e.Model)
	v.SetDefault("embed.api_key", "")
	v.SetDefault("embed.endpoint", e.BaseURL)
	v.SetDefault("embed.batch_size", e.BatchSize)
	v.SetDefault("embed.dimensions", e.Dimensions)
	v.SetDefault("embed.timeout", e.Timeout)
	v.SetDefault("embed.max_retries", e.MaxRetries)
	v.SetDefault("embed.workers", e.Workers)

	c := cache.DefaultConfig()
	v.SetDefault("cache.enable", false)
	v.SetDefault("cache.type", c.Type)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.prefix", c.KeyPrefix)
	v.SetDefault("cache.ttl", int(c.DefaultTTL.Seconds()))

	v.SetDefault("document.max_file_size_mb", 10)
	v.SetDefault("document.allowed_extensions", []string{".txt", ".md", ".markdown"})
}

// MatchConfig 转换为比较引擎配置
func (c *Config) MatchConfig() matcher.Config {
	return matcher.Config{
		FuzzyMinRatio:     c.Match.FuzzyMinRatio,
		SemanticThreshold: c.Match.SemanticThreshold,
		TopN:              c.Match.TopN,
		EnableSemantic:    c.Match.EnableSemantic,
		Lowercase:         c.Match.Lowercase,
		MinExactWords:     c.Match.MinExactWords,
		FuzzyMinWords:     c.Match.FuzzyMinWords,
		OverlapTolerance:  c.Match.OverlapTolerance,
		DedupPolicy:       c.Match.DedupPolicy,
		Workers:           c.Match.Workers,
		SnippetLength:     c.Match.SnippetLength,
	}
}

// LoggingConfig 转换为日志配置
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}

// CacheConfig 转换为缓存配置
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Type:            c.Cache.Type,
		RedisAddr:       c.Cache.Address,
		RedisPassword:   c.Cache.Password,
		RedisDB:         c.Cache.DB,
		KeyPrefix:       c.Cache.Prefix,
		DefaultTTL:      time.Duration(c.Cache.TTL) * time.Second,
		CleanupInterval: cache.DefaultConfig().CleanupInterval,
	}
}

// EmbeddingOptions 转换为嵌入客户端选项
func (c *Config) EmbeddingOptions() []embedding.Option {
	return []embedding.Option{
		embedding.WithAPIKey(c.Embed.APIKey),
		embedding.WithBaseURL(c.Embed.Endpoint),
		embedding.WithModel(c.Embed.Model),
		embedding.WithTimeout(c.Embed.Timeout),
		embedding.WithMaxRetries(c.Embed.MaxRetries),
		embedding.WithDimensions(c.Embed.Dimensions),
		embedding.WithBatchSize(c.Embed.BatchSize),
		embedding.WithWorkers(c.Embed.Workers),
	}
}

// MaxFileSize 返回文件大小上限（字节）
func (c *Config) MaxFileSize() int64 {
	return int64(c.Document.MaxFileSizeMB) << 20
}

// IsAllowedExtension 判断文件扩展名是否允许
func (c *Config) IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.Document.AllowedExtensions {
		if strings.ToLower(allowed) == ext {
			return true
		}
	}
	return false
}
