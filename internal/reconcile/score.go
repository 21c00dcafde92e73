package reconcile

import "github.com/Shivam0701/Shira-DocMatch/internal/matcher"

// OverallScore 计算整体相似度
// 每个匹配按其覆盖的词数与自身分数加权，除以两侧总词数，结果钳制到[0, 1]
func OverallScore(matches []matcher.CandidateMatch, leftWords, rightWords int) float64 {
	total := leftWords + rightWords
	if total <= 0 || len(matches) == 0 {
		return 0
	}

	var covered float64
	for _, m := range matches {
		covered += float64(m.Words()) * m.Score
	}

	score := covered / float64(total)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
