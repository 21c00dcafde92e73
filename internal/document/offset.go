package document

import "sort"

// OffsetMap 规范化文本到原始文本的位置映射
// 规范化文本的每个字节记录其来源字符在原文中的起止字节位置，映射单调不减
type OffsetMap struct {
	starts []int // 规范化字节 -> 来源字符在原文中的起始位置
	ends   []int // 规范化字节 -> 来源字符在原文中的结束位置（不含）
	origin int   // 原文总长度
}

// newOffsetMap 创建指定容量的映射表
func newOffsetMap(capacity, originLen int) *OffsetMap {
	return &OffsetMap{
		starts: make([]int, 0, capacity),
		ends:   make([]int, 0, capacity),
		origin: originLen,
	}
}

// record 为新写入的n个规范化字节记录来源区间
func (m *OffsetMap) record(n, origStart, origEnd int) {
	for i := 0; i < n; i++ {
		m.starts = append(m.starts, origStart)
		m.ends = append(m.ends, origEnd)
	}
}

// Len 返回规范化文本的长度
func (m *OffsetMap) Len() int {
	return len(m.starts)
}

// Original 返回规范化位置对应的原文位置
// 越界位置被钳制到原文边界
func (m *OffsetMap) Original(n int) int {
	if n <= 0 {
		if len(m.starts) == 0 {
			return 0
		}
		return m.starts[0]
	}
	if n >= len(m.starts) {
		if len(m.ends) == 0 {
			return m.origin
		}
		return m.ends[len(m.ends)-1]
	}
	return m.starts[n]
}

// OriginalSpan 将规范化区间[start, end)转换为原文区间
func (m *OffsetMap) OriginalSpan(start, end int) (int, int) {
	if len(m.starts) == 0 || end <= start {
		o := m.Original(start)
		return o, o
	}
	if start < 0 {
		start = 0
	}
	if end > len(m.ends) {
		end = len(m.ends)
	}
	return m.starts[start], m.ends[end-1]
}

// Normalized 返回原文位置对应的第一个规范化位置
// 原文位置落在被删除的字符上时返回其后的第一个规范化位置
func (m *OffsetMap) Normalized(o int) int {
	return sort.Search(len(m.ends), func(i int) bool {
		return m.ends[i] > o
	})
}
