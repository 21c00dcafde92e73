package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options 预处理选项
type Options struct {
	Lowercase       bool // 是否转换为小写
	MaxSegmentRunes int  // 单个句子的最大字符数，0表示使用默认值
}

// DefaultOptions 返回默认预处理选项
func DefaultOptions() Options {
	return Options{
		Lowercase:       true,
		MaxSegmentRunes: DefaultMaxSegmentRunes,
	}
}

// Preprocessor 文本预处理器
// 负责规范化原始文本，并生成词序列、句子序列和位置映射
type Preprocessor struct {
	opts     Options
	splitter *SentenceSplitter
}

// NewPreprocessor 创建新的预处理器
func NewPreprocessor(opts Options) *Preprocessor {
	return &Preprocessor{
		opts:     opts,
		splitter: NewSentenceSplitter(opts.MaxSegmentRunes),
	}
}

// Normalize 规范化原始文本
// 去除控制字符、合并连续空白、按需转换小写，并在扫描过程中同步构建位置映射。
// 空文本或不含任何词的文本返回空文档，而不是错误。
func (p *Preprocessor) Normalize(role Role, raw string) *Document {
	doc := &Document{
		Role:     role,
		Original: raw,
	}

	normalized, offsets, breaks := p.scan(raw)
	doc.Normalized = normalized
	doc.Offsets = offsets
	doc.Tokens = tokenize(normalized, offsets)

	if len(doc.Tokens) == 0 {
		doc.Normalized = ""
		doc.Offsets = newOffsetMap(0, len(raw))
		doc.Tokens = nil
		return doc
	}

	doc.Segments = p.splitter.Split(normalized, offsets, breaks, doc.Tokens)
	return doc
}

// scan 单次扫描原始文本，输出规范化文本、位置映射以及换行边界
// breaks记录由包含换行符的空白折叠而成的空格在规范化文本中的位置
func (p *Preprocessor) scan(raw string) (string, *OffsetMap, map[int]bool) {
	var b strings.Builder
	b.Grow(len(raw))
	offsets := newOffsetMap(len(raw), len(raw))
	breaks := make(map[int]bool)

	pending := false
	spaceStart, spaceEnd := 0, 0
	newline := false

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		pos := i
		i += size

		if unicode.IsSpace(r) {
			if !pending {
				pending = true
				spaceStart, spaceEnd = pos, pos+size
				newline = false
			}
			if isLineBreak(r) {
				newline = true
			}
			continue
		}

		// 非法字节、控制字符与不可打印字符直接丢弃
		if (r == utf8.RuneError && size == 1) || !unicode.IsPrint(r) {
			continue
		}

		if pending {
			// 忽略开头的空白
			if b.Len() > 0 {
				if newline {
					breaks[b.Len()] = true
				}
				b.WriteByte(' ')
				offsets.record(1, spaceStart, spaceEnd)
			}
			pending = false
		}

		if p.opts.Lowercase {
			r = unicode.ToLower(r)
		}
		n, _ := b.WriteRune(r)
		offsets.record(n, pos, pos+size)
	}

	return b.String(), offsets, breaks
}

// isLineBreak 是否为换行类字符
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isWordRune 是否为组成词的字符
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isApostrophe 是否为撇号（词内的撇号不拆分单词，如 don't）
func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// tokenize 将规范化文本切分为词序列
func tokenize(text string, offsets *OffsetMap) []Token {
	var tokens []Token
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		origStart, origEnd := offsets.OriginalSpan(start, end)
		tokens = append(tokens, Token{
			Text:      text[start:end],
			NormStart: start,
			NormEnd:   end,
			Start:     origStart,
			End:       origEnd,
		})
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isApostrophe(r) && start >= 0 && i+size < len(text):
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if !isWordRune(next) {
				flush(i)
			}
		default:
			flush(i)
		}
		i += size
	}
	flush(len(text))

	return tokens
}
