package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOffsetMap 测试规范化位置与原文位置的双向映射
func TestOffsetMap(t *testing.T) {
	// "A  B" -> "a b"
	doc := NewPreprocessor(DefaultOptions()).Normalize(Left, "A  B")
	m := doc.Offsets
	assert.Equal(t, "a b", doc.Normalized)
	assert.Equal(t, 3, m.Len())

	t.Run("original", func(t *testing.T) {
		assert.Equal(t, 0, m.Original(0))
		assert.Equal(t, 1, m.Original(1))
		assert.Equal(t, 3, m.Original(2))
		assert.Equal(t, 4, m.Original(3), "end maps to end of original")
		assert.Equal(t, 0, m.Original(-1))
	})

	t.Run("span", func(t *testing.T) {
		s, e := m.OriginalSpan(0, 3)
		assert.Equal(t, 0, s)
		assert.Equal(t, 4, e)

		s, e = m.OriginalSpan(2, 3)
		assert.Equal(t, 3, s)
		assert.Equal(t, 4, e)

		s, e = m.OriginalSpan(2, 2)
		assert.Equal(t, s, e)
	})

	t.Run("normalized", func(t *testing.T) {
		assert.Equal(t, 0, m.Normalized(0))
		assert.Equal(t, 1, m.Normalized(1))
		assert.Equal(t, 2, m.Normalized(2), "collapsed space maps forward")
		assert.Equal(t, 2, m.Normalized(3))
		assert.Equal(t, 3, m.Normalized(4))
	})

	t.Run("monotonic", func(t *testing.T) {
		doc := NewPreprocessor(DefaultOptions()).Normalize(Left, " x\t\ty  Ünï  z. ")
		m := doc.Offsets
		for i := 1; i < m.Len(); i++ {
			assert.LessOrEqual(t, m.Original(i-1), m.Original(i))
		}
	})

	t.Run("empty", func(t *testing.T) {
		doc := NewPreprocessor(DefaultOptions()).Normalize(Left, "   ")
		assert.Equal(t, 0, doc.Offsets.Original(0))
		assert.Equal(t, 3, doc.Offsets.Original(1))
	})
}
