package matcher

import (
	"context"
	"runtime"
	"sort"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"github.com/Shivam0701/Shira-DocMatch/internal/document"
)

// FuzzyOptions 模糊匹配选项
type FuzzyOptions struct {
	MinRatio float64 // 最低相似度
	MinWords int     // 参与比较的句子最少词数
	Workers  int     // 并发数，0表示使用CPU核数
}

// ratio 计算两个字符串的归一化编辑相似度
// 基于插入/删除编辑距离：2·LCS / (|a|+|b|)，按字符计算，1.0表示完全相同。
// la与lb为两侧的字符数；句子长度由预处理器限制，LCS矩阵的大小因此有上界
func ratio(a, b string, la, lb int) float64 {
	if la+lb == 0 {
		return 1.0
	}
	if a == b {
		return 1.0
	}
	return 2 * float64(edlib.LCS(a, b)) / float64(la+lb)
}

// fuzzySegment 参与比较的句子
type fuzzySegment struct {
	seg   document.Segment
	runes int
}

// fuzzyHit 带排序键的匹配结果
type fuzzyHit struct {
	left, right int
	match       CandidateMatch
}

// FindFuzzy 对左右两侧的句子两两比较，返回相似度不低于MinRatio的句子对
// 右侧句子被划分给多个worker并行处理，每比较一对句子前检查ctx，取消时返回ctx.Err()。
// 全部比较结束后再检查一次ctx，超时后完成的结果同样被丢弃
func FindFuzzy(ctx context.Context, left, right []document.Segment, opts FuzzyOptions) ([]CandidateMatch, error) {
	ls := eligible(left, opts.MinWords)
	rs := eligible(right, opts.MinWords)
	if len(ls) == 0 || len(rs) == 0 {
		return nil, ctx.Err()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(rs) {
		workers = len(rs)
	}

	results := make([][]fuzzyHit, workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	chunk := (len(rs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(rs) {
			hi = len(rs)
		}
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			hits, err := compareChunk(gctx, ls, rs[lo:hi], opts.MinRatio)
			results[w] = hits
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits []fuzzyHit
	for _, r := range results {
		hits = append(hits, r...)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].left != hits[j].left {
			return hits[i].left < hits[j].left
		}
		return hits[i].right < hits[j].right
	})

	matches := make([]CandidateMatch, len(hits))
	for i, h := range hits {
		matches[i] = h.match
	}
	return matches, nil
}

// compareChunk 比较所有左侧句子与一部分右侧句子
func compareChunk(ctx context.Context, ls, rs []fuzzySegment, minRatio float64) ([]fuzzyHit, error) {
	var hits []fuzzyHit
	for _, r := range rs {
		for _, l := range ls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			// 长度差异过大时相似度上界已低于阈值
			total := l.runes + r.runes
			if 2*float64(min(l.runes, r.runes))/float64(total) < minRatio {
				continue
			}

			score := ratio(l.seg.Text, r.seg.Text, l.runes, r.runes)
			if score < minRatio {
				continue
			}

			hits = append(hits, fuzzyHit{
				left:  l.seg.Index,
				right: r.seg.Index,
				match: CandidateMatch{
					LeftStart:  l.seg.Start,
					LeftEnd:    l.seg.End,
					RightStart: r.seg.Start,
					RightEnd:   r.seg.End,
					Type:       Fuzzy,
					Score:      score,
					LeftWords:  l.seg.WordCount,
					RightWords: r.seg.WordCount,
				},
			})
		}
	}
	return hits, nil
}

// eligible 过滤掉词数过少的句子
func eligible(segments []document.Segment, minWords int) []fuzzySegment {
	out := make([]fuzzySegment, 0, len(segments))
	for _, seg := range segments {
		if seg.WordCount < minWords {
			continue
		}
		out = append(out, fuzzySegment{
			seg:   seg,
			runes: utf8.RuneCountInString(seg.Text),
		})
	}
	return out
}
