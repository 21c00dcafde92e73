package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParserFactory 测试解析器工厂
func TestParserFactory(t *testing.T) {
	tests := []struct {
		path     string
		wantType interface{}
		wantErr  bool
	}{
		{"notes.txt", &PlainTextParser{}, false},
		{"NOTES.TXT", &PlainTextParser{}, false},
		{"readme.md", &MarkdownParser{}, false},
		{"guide.markdown", &MarkdownParser{}, false},
		{"report.pdf", nil, true},
		{"noext", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := ParserFactory(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, Markdown, DetectContentType("a/b/c.MD"))
	assert.Equal(t, PlainText, DetectContentType("x.text"))
	assert.Equal(t, Unknown, DetectContentType("x.docx"))
}

func TestPlainTextParser(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sample.txt")
		content := "First line.\nSecond line with ünïcode."
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		text, err := NewPlainTextParser().Parse(path)
		require.NoError(t, err)
		assert.Equal(t, content, text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewPlainTextParser().Parse(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		_, err := NewPlainTextParser().ParseReader(bytes.NewReader([]byte{0xff, 0xfe, 'a'}), "bad.txt")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "UTF-8")
	})
}

func TestMarkdownParserReader(t *testing.T) {
	md := "# Title\n\nThis is **bold** text &amp; more.\n\n- item one\n- item two\n"

	text, err := NewMarkdownParser().ParseReader(strings.NewReader(md), "test.md")
	require.NoError(t, err)
	t.Logf("extracted: %q", text)

	assert.NotContains(t, text, "<")
	assert.NotContains(t, text, "**")
	assert.Contains(t, text, "Title\n")
	assert.Contains(t, text, "This is bold text & more.")
	assert.Contains(t, text, "- item one")
	assert.Contains(t, text, "- item two")
}

func TestMarkdownBlocksBecomeSegments(t *testing.T) {
	md := "# Heading without period\n\nA paragraph follows here"

	text, err := NewMarkdownParser().ParseReader(strings.NewReader(md), "test.md")
	require.NoError(t, err)

	doc := NewPreprocessor(DefaultOptions()).Normalize(Left, text)
	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "heading without period", doc.Segments[0].Text)
	assert.Equal(t, "a paragraph follows here", doc.Segments[1].Text)
}

func TestCompactLines(t *testing.T) {
	in := "  a   b \n\n\n\n c\t d \n"
	assert.Equal(t, "a b\n\nc d", compactLines(in))
}
