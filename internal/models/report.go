package models

// MatchRecord 报告中的一条匹配记录
// 位置为原文中的字节偏移，结束位置不含
type MatchRecord struct {
	LeftText   string  `json:"left_text"`   // 左侧原文片段
	LeftStart  int     `json:"left_start"`  // 左侧起始位置
	LeftEnd    int     `json:"left_end"`    // 左侧结束位置
	RightText  string  `json:"right_text"`  // 右侧原文片段
	RightStart int     `json:"right_start"` // 右侧起始位置
	RightEnd   int     `json:"right_end"`   // 右侧结束位置
	Type       string  `json:"type"`        // 匹配类型：exact/fuzzy/semantic
	Score      float64 `json:"score"`       // 匹配分数
}

// Stats 比较统计信息
// 词数与字符数基于用户上传的原始文本计算
type Stats struct {
	LeftWordCount  int    `json:"left_word_count"`
	RightWordCount int    `json:"right_word_count"`
	TotalMatches   int    `json:"total_matches"` // 去重后、截断前的匹配数
	LeftChars      int    `json:"left_chars"`
	RightChars     int    `json:"right_chars"`
	LeftFormat     string `json:"left_format,omitempty"`  // 左侧文档格式
	RightFormat    string `json:"right_format,omitempty"` // 右侧文档格式
}

// ComparisonReport 一次比较的结果
// 每次比较创建一次，构建后不再修改
type ComparisonReport struct {
	ID           string        `json:"id"`            // 比较ID，用于日志关联
	OverallScore float64       `json:"overall_score"` // 整体相似度
	Matches      []MatchRecord `json:"matches"`       // 排序后的匹配
	Stats        Stats         `json:"stats"`         // 统计信息
}

// BestMatch 返回分数最高的匹配
func (r *ComparisonReport) BestMatch() (MatchRecord, error) {
	if len(r.Matches) == 0 {
		return MatchRecord{}, ErrEmptyReport
	}
	return r.Matches[0], nil
}

// CountByType 按类型统计匹配数量
func (r *ComparisonReport) CountByType() map[string]int {
	counts := make(map[string]int)
	for _, m := range r.Matches {
		counts[m.Type]++
	}
	return counts
}
