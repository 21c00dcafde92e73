package document

// Role 文档在比较中的角色
type Role string

const (
	// Left 左侧文档
	Left Role = "left"
	// Right 右侧文档
	Right Role = "right"
)

// Token 规范化文本中的一个词
type Token struct {
	Text      string // 规范化后的词
	NormStart int    // 规范化文本中的起始位置
	NormEnd   int    // 规范化文本中的结束位置（不含）
	Start     int    // 原文起始位置
	End       int    // 原文结束位置（不含）
}

// Segment 句子级文本单元
// 模糊匹配与语义匹配的基本比较单位
type Segment struct {
	Index     int    // 段落序号
	Text      string // 规范化后的文本
	NormStart int    // 规范化文本中的起始位置
	NormEnd   int    // 规范化文本中的结束位置（不含）
	Start     int    // 原文起始位置
	End       int    // 原文结束位置（不含）
	WordCount int    // 包含的词数
}

// Document 预处理后的文档
// 每次比较时创建，比较结束后丢弃
type Document struct {
	Role       Role       // 文档角色
	Original   string     // 原始文本
	Normalized string     // 规范化文本
	Offsets    *OffsetMap // 规范化位置到原文位置的映射
	Segments   []Segment  // 句子序列
	Tokens     []Token    // 词序列
}

// WordCount 返回规范化文本的词数
func (d *Document) WordCount() int {
	return len(d.Tokens)
}

// IsEmpty 文档是否不包含任何词
func (d *Document) IsEmpty() bool {
	return len(d.Tokens) == 0
}

// SegmentTexts 按顺序返回所有句子的规范化文本
// 用于向外部嵌入服务请求向量
func (d *Document) SegmentTexts() []string {
	texts := make([]string, len(d.Segments))
	for i, seg := range d.Segments {
		texts[i] = seg.Text
	}
	return texts
}

// Slice 返回原文区间[start, end)的文本，越界时自动钳制
func (d *Document) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(d.Original) {
		end = len(d.Original)
	}
	if start >= end {
		return ""
	}
	return d.Original[start:end]
}
