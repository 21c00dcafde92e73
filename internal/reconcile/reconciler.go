package reconcile

import (
	"sort"

	"github.com/Shivam0701/Shira-DocMatch/internal/matcher"
)

// Options 合并选项
type Options struct {
	TopN      int    // 最多返回的匹配数，<=0 表示不截断
	Tolerance int    // 允许的重叠字节数，两侧相同
	Policy    string // 去重策略，matcher.DedupWeighted 或 matcher.DedupScore
}

// DefaultOptions 返回默认合并选项
func DefaultOptions() Options {
	return Options{
		TopN:      20,
		Tolerance: 0,
		Policy:    matcher.DedupWeighted,
	}
}

// MatchSet 去重、排序并截断后的匹配集合
type MatchSet struct {
	Matches  []matcher.CandidateMatch // 排名前N的匹配
	Retained []matcher.CandidateMatch // 截断前保留的全部匹配，已排序
	Total    int                      // 截断前的匹配数
}

// Reconcile 合并三种匹配器的候选结果
// 候选按去重优先级依次尝试，只有与已接受的匹配在两侧都不重叠时才被接受，
// 因此结果中任意两个匹配都不会重叠。之后按分数排序并截断到TopN
func Reconcile(candidates []matcher.CandidateMatch, opts Options) MatchSet {
	if len(candidates) == 0 {
		return MatchSet{}
	}

	ordered := make([]matcher.CandidateMatch, len(candidates))
	copy(ordered, candidates)
	less := dedupOrder(opts.Policy)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	left := newIntervalSet(opts.Tolerance)
	right := newIntervalSet(opts.Tolerance)
	retained := make([]matcher.CandidateMatch, 0, len(ordered))
	for _, c := range ordered {
		if left.overlaps(c.LeftStart, c.LeftEnd) || right.overlaps(c.RightStart, c.RightEnd) {
			continue
		}
		left.insert(c.LeftStart, c.LeftEnd)
		right.insert(c.RightStart, c.RightEnd)
		retained = append(retained, c)
	}

	Rank(retained)

	set := MatchSet{
		Retained: retained,
		Total:    len(retained),
		Matches:  retained,
	}
	if opts.TopN > 0 && len(retained) > opts.TopN {
		set.Matches = retained[:opts.TopN]
	}
	return set
}

// Rank 按 分数降序、覆盖词数降序、左侧起始位置升序、右侧起始位置升序 排序
func Rank(matches []matcher.CandidateMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Words() != b.Words() {
			return a.Words() > b.Words()
		}
		if a.LeftStart != b.LeftStart {
			return a.LeftStart < b.LeftStart
		}
		return a.RightStart < b.RightStart
	})
}

// dedupOrder 返回去重时的优先级比较函数
func dedupOrder(policy string) func(a, b matcher.CandidateMatch) bool {
	return func(a, b matcher.CandidateMatch) bool {
		if policy != matcher.DedupScore {
			wa, wb := a.Score*float64(a.Words()), b.Score*float64(b.Words())
			if wa != wb {
				return wa > wb
			}
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := a.Type.Priority(), b.Type.Priority(); pa != pb {
			return pa > pb
		}
		if a.Words() != b.Words() {
			return a.Words() > b.Words()
		}
		if a.LeftStart != b.LeftStart {
			return a.LeftStart < b.LeftStart
		}
		if a.RightStart != b.RightStart {
			return a.RightStart < b.RightStart
		}
		if a.LeftEnd != b.LeftEnd {
			return a.LeftEnd < b.LeftEnd
		}
		return a.RightEnd < b.RightEnd
	}
}
