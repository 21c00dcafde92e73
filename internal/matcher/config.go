package matcher

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 去重策略
const (
	// DedupWeighted 按 分数×覆盖词数 选择重叠组中保留的匹配
	DedupWeighted = "weighted"
	// DedupScore 严格按分数选择重叠组中保留的匹配
	DedupScore = "score"
)

// Config 比较配置
// 在比较开始时校验一次，之后只读
type Config struct {
	FuzzyMinRatio     float64 `json:"fuzzy_min_ratio" validate:"gte=0,lte=1"`
	SemanticThreshold float64 `json:"semantic_threshold" validate:"gte=0,lte=1"`
	TopN              int     `json:"top_n" validate:"gt=0"`
	EnableSemantic    bool    `json:"enable_semantic"`
	Lowercase         bool    `json:"lowercase"`
	MinExactWords     int     `json:"min_exact_words" validate:"gte=1"`
	FuzzyMinWords     int     `json:"fuzzy_min_words" validate:"gte=1"`
	OverlapTolerance  int     `json:"overlap_tolerance" validate:"gte=0"`
	DedupPolicy       string  `json:"dedup_policy" validate:"oneof=weighted score"`
	Workers           int     `json:"workers" validate:"gte=0"`        // 0 表示使用CPU核数
	SnippetLength     int     `json:"snippet_length" validate:"gte=0"` // 0 表示不截断
}

// DefaultConfig 返回默认比较配置
func DefaultConfig() Config {
	return Config{
		FuzzyMinRatio:     0.85,
		SemanticThreshold: 0.75,
		TopN:              20,
		EnableSemantic:    true,
		Lowercase:         true,
		MinExactWords:     3,
		FuzzyMinWords:     3,
		OverlapTolerance:  0,
		DedupPolicy:       DedupWeighted,
		Workers:           0,
		SnippetLength:     100,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息中使用json字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate 校验配置，返回第一个不合法的配置项
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	fe := verrs[0]
	return NewConfigError(fe.Field(), fe.Value(), describe(fe))
}

// describe 将校验规则转换为可读的原因
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "oneof":
		return "must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	default:
		return fmt.Sprintf("failed on %q rule", fe.Tag())
	}
}
