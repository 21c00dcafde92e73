package matcher

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.85, cfg.FuzzyMinRatio)
	assert.Equal(t, 0.75, cfg.SemanticThreshold)
	assert.Equal(t, 20, cfg.TopN)
	assert.True(t, cfg.EnableSemantic)
	assert.True(t, cfg.Lowercase)
	assert.Equal(t, 3, cfg.MinExactWords)
	assert.Equal(t, DedupWeighted, cfg.DedupPolicy)
}

// TestConfigValidate 测试配置校验
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"fuzzy ratio above one", func(c *Config) { c.FuzzyMinRatio = 1.5 }, "fuzzy_min_ratio"},
		{"fuzzy ratio NaN", func(c *Config) { c.FuzzyMinRatio = math.NaN() }, "fuzzy_min_ratio"},
		{"semantic threshold negative", func(c *Config) { c.SemanticThreshold = -0.1 }, "semantic_threshold"},
		{"top n zero", func(c *Config) { c.TopN = 0 }, "top_n"},
		{"top n negative", func(c *Config) { c.TopN = -3 }, "top_n"},
		{"min exact words zero", func(c *Config) { c.MinExactWords = 0 }, "min_exact_words"},
		{"fuzzy min words zero", func(c *Config) { c.FuzzyMinWords = 0 }, "fuzzy_min_words"},
		{"negative tolerance", func(c *Config) { c.OverlapTolerance = -1 }, "overlap_tolerance"},
		{"unknown dedup policy", func(c *Config) { c.DedupPolicy = "longest" }, "dedup_policy"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
		{"negative snippet", func(c *Config) { c.SnippetLength = -1 }, "snippet_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.NotEmpty(t, cfgErr.Reason)
			t.Logf("error: %v", err)
		})
	}

	t.Run("boundaries are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FuzzyMinRatio = 0
		cfg.SemanticThreshold = 1
		cfg.TopN = 1
		cfg.DedupPolicy = DedupScore
		assert.NoError(t, cfg.Validate())
	})
}

func TestMatchType(t *testing.T) {
	assert.Greater(t, Exact.Priority(), Semantic.Priority())
	assert.Greater(t, Semantic.Priority(), Fuzzy.Priority())
	assert.Equal(t, 0, MatchType("other").Priority())

	m := CandidateMatch{LeftStart: 1, LeftEnd: 5, RightStart: 10, RightEnd: 20, Type: Fuzzy, Score: 0.9, LeftWords: 2, RightWords: 3}
	assert.Equal(t, 5, m.Words())
}
