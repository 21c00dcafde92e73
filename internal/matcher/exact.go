package matcher

import (
	"github.com/cespare/xxhash/v2"

	"github.com/Shivam0701/Shira-DocMatch/internal/document"
)

// FindExact 查找两个文档之间所有词数不少于minWords的最长公共词序列
// 每个对齐从左边界开始向后扩展到第一个不相同的词，只报告一次，分数固定为1.0
func FindExact(left, right *document.Document, minWords int) []CandidateMatch {
	if minWords < 1 {
		minWords = 1
	}
	lt, rt := left.Tokens, right.Tokens
	if len(lt) < minWords || len(rt) < minWords {
		return nil
	}

	// 右侧所有长度为minWords的词组按哈希建立索引
	index := make(map[uint64][]int, len(rt)-minWords+1)
	for j := 0; j+minWords <= len(rt); j++ {
		h := gramHash(rt, j, minWords)
		index[h] = append(index[h], j)
	}

	var matches []CandidateMatch
	for i := 0; i+minWords <= len(lt); i++ {
		positions, ok := index[gramHash(lt, i, minWords)]
		if !ok {
			continue
		}
		for _, j := range positions {
			// 前一个词也相同时，该对齐已被更早的起点覆盖
			if i > 0 && j > 0 && lt[i-1].Text == rt[j-1].Text {
				continue
			}

			n := 0
			for i+n < len(lt) && j+n < len(rt) && lt[i+n].Text == rt[j+n].Text {
				n++
			}
			// 哈希冲突
			if n < minWords {
				continue
			}

			matches = append(matches, CandidateMatch{
				LeftStart:  lt[i].Start,
				LeftEnd:    lt[i+n-1].End,
				RightStart: rt[j].Start,
				RightEnd:   rt[j+n-1].End,
				Type:       Exact,
				Score:      1.0,
				LeftWords:  n,
				RightWords: n,
			})
		}
	}

	return matches
}

// gramHash 计算从start开始的n个词的哈希
func gramHash(tokens []document.Token, start, n int) uint64 {
	d := xxhash.New()
	for _, tok := range tokens[start : start+n] {
		_, _ = d.WriteString(tok.Text)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
