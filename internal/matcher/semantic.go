package matcher

import (
	"fmt"
	"math"

	"github.com/Shivam0701/Shira-DocMatch/internal/document"
)

// FindSemantic 计算左右两侧句子向量的余弦相似度，返回不低于threshold的句子对
// 向量由外部嵌入服务按句子顺序提供，匹配器本身不计算向量。
// 两侧均未提供向量时不产生候选；数量或维度不一致时返回ConfigError
func FindSemantic(left []document.Segment, leftEmb [][]float32, right []document.Segment, rightEmb [][]float32, threshold float64) ([]CandidateMatch, error) {
	if leftEmb == nil && rightEmb == nil {
		return nil, nil
	}
	if err := checkEmbeddings("left_embeddings", left, leftEmb); err != nil {
		return nil, err
	}
	if err := checkEmbeddings("right_embeddings", right, rightEmb); err != nil {
		return nil, err
	}
	if len(left) == 0 || len(right) == 0 {
		return nil, nil
	}

	dim := len(leftEmb[0])
	for _, v := range rightEmb {
		if len(v) != dim {
			return nil, NewConfigError("right_embeddings", len(v), fmt.Sprintf("dimension differs from left side (%d)", dim))
		}
	}

	leftNorms := norms(leftEmb)
	rightNorms := norms(rightEmb)

	var matches []CandidateMatch
	for i, lv := range leftEmb {
		for j, rv := range rightEmb {
			sim := cosine(lv, rv, leftNorms[i], rightNorms[j])
			if sim < threshold {
				continue
			}
			matches = append(matches, CandidateMatch{
				LeftStart:  left[i].Start,
				LeftEnd:    left[i].End,
				RightStart: right[j].Start,
				RightEnd:   right[j].End,
				Type:       Semantic,
				Score:      math.Max(0, sim),
				LeftWords:  left[i].WordCount,
				RightWords: right[j].WordCount,
			})
		}
	}
	return matches, nil
}

// cosine 计算两个等长向量的余弦相似度，na与nb为预先计算的范数，任一向量为零向量时返回0
func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for k := range a {
		dot += float64(a[k]) * float64(b[k])
	}
	sim := dot / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	// 浮点误差可能略超出[-1, 1]
	return math.Max(-1, math.Min(1, sim))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func norms(vectors [][]float32) []float64 {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i] = norm(v)
	}
	return out
}

// checkEmbeddings 校验一侧向量数量与维度
func checkEmbeddings(field string, segments []document.Segment, vectors [][]float32) error {
	if len(vectors) != len(segments) {
		return NewConfigError(field, len(vectors), fmt.Sprintf("expected %d vectors, one per segment", len(segments)))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return NewConfigError(field, i, "empty vector")
		}
		if len(v) != len(vectors[0]) {
			return NewConfigError(field, len(v), fmt.Sprintf("inconsistent dimension, expected %d", len(vectors[0])))
		}
	}
	return nil
}
