package document

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxSegmentRunes 单个句子的默认最大字符数
const DefaultMaxSegmentRunes = 400

// SentenceSplitter 句子分割器
// 在规范化文本上按标点与换行边界切分句子，保留每个句子在原文中的位置。
// 超过maxRunes个字符的句子继续按子句切分，缺少标点的长文本也不会形成超长句子
type SentenceSplitter struct {
	abbreviations map[string]bool // 句点后不断句的常见缩写
	maxRunes      int             // 单个句子的最大字符数
}

// NewSentenceSplitter 创建新的句子分割器
// maxRunes不大于0时使用DefaultMaxSegmentRunes
func NewSentenceSplitter(maxRunes int) *SentenceSplitter {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxSegmentRunes
	}
	abbrs := []string{
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
		"vs", "etc", "inc", "ltd", "co", "no", "fig", "e.g", "i.e",
	}
	s := &SentenceSplitter{
		abbreviations: make(map[string]bool, len(abbrs)),
		maxRunes:      maxRunes,
	}
	for _, a := range abbrs {
		s.abbreviations[a] = true
	}
	return s
}

// Split 将规范化文本切分为句子
// breaks为换行边界位置，tokens为已切分的词序列，不含任何词的句子被丢弃
func (s *SentenceSplitter) Split(text string, offsets *OffsetMap, breaks map[int]bool, tokens []Token) []Segment {
	var segments []Segment
	tokenIdx := 0
	start := 0

	add := func(segStart, segEnd int) {
		if segStart >= segEnd {
			return
		}

		// 统计落在句子范围内的词
		for tokenIdx < len(tokens) && tokens[tokenIdx].NormEnd <= segStart {
			tokenIdx++
		}
		words := 0
		for i := tokenIdx; i < len(tokens) && tokens[i].NormStart < segEnd; i++ {
			words++
		}
		if words == 0 {
			return
		}

		origStart, origEnd := offsets.OriginalSpan(segStart, segEnd)
		segments = append(segments, Segment{
			Index:     len(segments),
			Text:      text[segStart:segEnd],
			NormStart: segStart,
			NormEnd:   segEnd,
			Start:     origStart,
			End:       origEnd,
			WordCount: words,
		})
	}

	emit := func(end int) {
		segStart, segEnd := trimSpaces(text, start, end)
		start = end
		for segStart < segEnd {
			cut := s.clauseCut(text, segStart, segEnd)
			add(trimSpaces(text, segStart, cut))
			segStart = cut
		}
	}

	for i := 0; i < len(text); {
		if breaks[i] {
			emit(i)
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		i += size

		switch {
		case isWideTerminal(r):
			// 全角标点后无需空格即可断句
			i = skipClosers(text, i)
			emit(i)
		case isTerminal(r):
			end := skipClosers(text, i)
			if end < len(text) && text[end] != ' ' {
				i = end
				continue
			}
			if r == '.' && s.isAbbreviation(text, start, i-size) {
				i = end
				continue
			}
			i = end
			emit(i)
		}
	}
	emit(len(text))

	return segments
}

// clauseCut 返回[from, to)中第一个句子的结束位置
// 不超过maxRunes时返回to；否则依次尝试在后半段的子句标点、最后一个空格处切分，都没有时按字符数硬切
func (s *SentenceSplitter) clauseCut(text string, from, to int) int {
	limit := from
	for n := 0; limit < to && n < s.maxRunes; n++ {
		_, size := utf8.DecodeRuneInString(text[limit:])
		limit += size
	}
	if limit >= to {
		return to
	}

	if cut := clauseBreak(text, from, limit); cut > from+(limit-from)/2 {
		return cut
	}
	if sp := strings.LastIndexByte(text[from:limit], ' '); sp > 0 {
		return from + sp
	}
	return limit
}

// clauseBreak 返回区间内最后一个子句标点之后的位置，没有时返回-1
func clauseBreak(text string, from, limit int) int {
	cut := -1
	for i := from; i < limit; {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		switch {
		case isWideClause(r):
			cut = i
		case isClause(r) && i < len(text) && text[i] == ' ':
			cut = i
		}
	}
	return cut
}

// isAbbreviation 判断句点前的词是否为常见缩写
func (s *SentenceSplitter) isAbbreviation(text string, from, dot int) bool {
	wordStart := strings.LastIndexByte(text[from:dot], ' ')
	if wordStart < 0 {
		wordStart = from
	} else {
		wordStart += from + 1
	}
	word := strings.ToLower(strings.Trim(text[wordStart:dot], "\"'([“‘"))
	return s.abbreviations[word]
}

// isTerminal 半角句末标点
func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// isWideTerminal 全角句末标点
func isWideTerminal(r rune) bool {
	return r == '。' || r == '！' || r == '？' || r == '；'
}

// isClause 半角子句标点
func isClause(r rune) bool {
	return r == ',' || r == ';' || r == ':'
}

// isWideClause 全角子句标点
func isWideClause(r rune) bool {
	return r == '，' || r == '、' || r == '：'
}

// isCloser 句末标点后可以跟随的闭合符号
func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '」', '』', '»', '）':
		return true
	}
	return false
}

// skipClosers 跳过句末连续的标点与闭合符号，例如 `?!` 或 `."`
func skipClosers(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isCloser(r) && !isTerminal(r) && !isWideTerminal(r) {
			break
		}
		i += size
	}
	return i
}

// trimSpaces 去除区间两端的空格
func trimSpaces(text string, start, end int) (int, int) {
	for start < end && text[start] == ' ' {
		start++
	}
	for end > start && text[end-1] == ' ' {
		end--
	}
	return start, end
}
