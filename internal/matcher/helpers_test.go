package matcher

import (
	"context"
	"unicode/utf8"

	"github.com/Shivam0701/Shira-DocMatch/internal/document"
)

const (
	foxLeft  = "The quick brown fox jumps over the lazy dog."
	foxRight = "A quick brown fox jumps over a lazy dog."
)

func normalize(role document.Role, text string) *document.Document {
	return document.NewPreprocessor(document.DefaultOptions()).Normalize(role, text)
}

// runeRatio 按字符数计算两个字符串的相似度
func runeRatio(a, b string) float64 {
	return ratio(a, b, utf8.RuneCountInString(a), utf8.RuneCountInString(b))
}

// expiredContext 从不关闭Done，但Err报告已超时，
// 模拟在最后一对句子比较期间到达的截止时间
type expiredContext struct {
	context.Context
}

func (expiredContext) Err() error {
	return context.DeadlineExceeded
}
