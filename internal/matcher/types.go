package matcher

// MatchType 匹配类型
type MatchType string

const (
	// Exact 完全相同的词序列
	Exact MatchType = "exact"
	// Fuzzy 编辑距离相近的句子对
	Fuzzy MatchType = "fuzzy"
	// Semantic 语义向量相近的句子对
	Semantic MatchType = "semantic"
)

// Priority 分数相同时的类型优先级，数值越大越优先
// exact > semantic > fuzzy
func (t MatchType) Priority() int {
	switch t {
	case Exact:
		return 3
	case Semantic:
		return 2
	case Fuzzy:
		return 1
	default:
		return 0
	}
}

// CandidateMatch 匹配器产生的候选匹配
// 位置均为原文坐标，结束位置不含
type CandidateMatch struct {
	LeftStart  int       `json:"left_start"`
	LeftEnd    int       `json:"left_end"`
	RightStart int       `json:"right_start"`
	RightEnd   int       `json:"right_end"`
	Type       MatchType `json:"type"`
	Score      float64   `json:"score"`
	LeftWords  int       `json:"left_words"`  // 左侧覆盖的词数
	RightWords int       `json:"right_words"` // 右侧覆盖的词数
}

// Words 两侧覆盖的词数之和
func (m CandidateMatch) Words() int {
	return m.LeftWords + m.RightWords
}
