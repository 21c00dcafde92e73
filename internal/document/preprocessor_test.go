package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNormalize 测试文本规范化
func TestNormalize(t *testing.T) {
	p := NewPreprocessor(DefaultOptions())

	t.Run("whitespace and case", func(t *testing.T) {
		raw := "  Hello,\tWorld!  \n\nNew   line. "
		doc := p.Normalize(Left, raw)

		assert.Equal(t, Left, doc.Role)
		assert.Equal(t, raw, doc.Original)
		assert.Equal(t, "hello, world! new line.", doc.Normalized)
		assert.Equal(t, len(doc.Normalized), doc.Offsets.Len())

		require.Len(t, doc.Segments, 2)
		assert.Equal(t, "hello, world!", doc.Segments[0].Text)
		assert.Equal(t, "Hello,\tWorld!", raw[doc.Segments[0].Start:doc.Segments[0].End])
		assert.Equal(t, "New   line.", raw[doc.Segments[1].Start:doc.Segments[1].End])
		assert.Equal(t, 2, doc.Segments[1].WordCount)

		require.Len(t, doc.Tokens, 4)
		assert.Equal(t, "world", doc.Tokens[1].Text)
		assert.Equal(t, "World", raw[doc.Tokens[1].Start:doc.Tokens[1].End])
	})

	t.Run("keep case", func(t *testing.T) {
		doc := NewPreprocessor(Options{Lowercase: false}).Normalize(Right, "Mixed CASE text")
		assert.Equal(t, "Mixed CASE text", doc.Normalized)
		assert.Equal(t, "CASE", doc.Tokens[1].Text)
	})

	t.Run("control characters", func(t *testing.T) {
		raw := "a\x00b\x07 c\u200b d"
		doc := p.Normalize(Left, raw)
		t.Logf("normalized: %q", doc.Normalized)

		assert.Equal(t, "ab c d", doc.Normalized)
		require.Len(t, doc.Tokens, 3)
		assert.Equal(t, "a\x00b", raw[doc.Tokens[0].Start:doc.Tokens[0].End])
	})

	t.Run("invalid utf8 bytes dropped", func(t *testing.T) {
		doc := p.Normalize(Left, "ok\xffay then")
		assert.Equal(t, "okay then", doc.Normalized)
	})

	t.Run("multibyte lowercase keeps offsets", func(t *testing.T) {
		raw := "İstanbul ÉCOLE Straße"
		doc := p.Normalize(Left, raw)

		require.Len(t, doc.Tokens, 3)
		assert.Equal(t, "İstanbul", raw[doc.Tokens[0].Start:doc.Tokens[0].End])
		assert.Equal(t, "école", doc.Tokens[1].Text)
		assert.Equal(t, "ÉCOLE", raw[doc.Tokens[1].Start:doc.Tokens[1].End])
		assert.Equal(t, "Straße", raw[doc.Tokens[2].Start:doc.Tokens[2].End])
	})

	t.Run("apostrophes", func(t *testing.T) {
		doc := p.Normalize(Left, "Don't stop, rock’n roll' ok")
		var words []string
		for _, tok := range doc.Tokens {
			words = append(words, tok.Text)
		}
		assert.Equal(t, []string{"don't", "stop", "rock’n", "roll", "ok"}, words)
	})
}

// TestNormalizeEmpty 空文本或无词文本返回空文档
func TestNormalizeEmpty(t *testing.T) {
	p := NewPreprocessor(DefaultOptions())

	for _, raw := range []string{"", "   \n\t ", "... !!! ---", "\x00\x01"} {
		t.Run(strings.TrimSpace(raw), func(t *testing.T) {
			doc := p.Normalize(Right, raw)
			assert.True(t, doc.IsEmpty())
			assert.Equal(t, "", doc.Normalized)
			assert.Empty(t, doc.Segments)
			assert.Equal(t, 0, doc.WordCount())
			assert.Equal(t, 0, doc.Offsets.Len())
		})
	}
}

// TestSegmentInvariants 段落位置单调且互不重叠
func TestSegmentInvariants(t *testing.T) {
	raw := strings.Repeat("First sentence here. Second one?\nThird line without stop\n\n「全角。」 Last!  ", 5)
	doc := NewPreprocessor(DefaultOptions()).Normalize(Left, raw)
	require.NotEmpty(t, doc.Segments)

	prevEnd := 0
	for i, seg := range doc.Segments {
		assert.Equal(t, i, seg.Index)
		assert.LessOrEqual(t, prevEnd, seg.Start, "segment %d overlaps previous", i)
		assert.Less(t, seg.Start, seg.End)
		assert.Greater(t, seg.WordCount, 0)
		assert.Equal(t, seg.Text, doc.Normalized[seg.NormStart:seg.NormEnd])
		prevEnd = seg.End
	}

	words := 0
	for _, seg := range doc.Segments {
		words += seg.WordCount
	}
	assert.Equal(t, doc.WordCount(), words)
}

func TestDocumentHelpers(t *testing.T) {
	doc := NewPreprocessor(DefaultOptions()).Normalize(Left, "One two three. Four five six.")

	assert.Equal(t, []string{"one two three.", "four five six."}, doc.SegmentTexts())
	assert.Equal(t, "One", doc.Slice(-5, 3))
	assert.Equal(t, "six.", doc.Slice(25, 100))
	assert.Equal(t, "", doc.Slice(10, 5))
}
