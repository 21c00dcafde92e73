package reconcile

import "sort"

type interval struct {
	start, end int
}

// intervalSet 按起始位置有序的已接受区间集合
type intervalSet struct {
	items     []interval
	tolerance int
	maxLen    int
}

func newIntervalSet(tolerance int) *intervalSet {
	return &intervalSet{tolerance: tolerance}
}

// overlaps 判断[start, end)与集合中任一区间的交集是否超过容差
func (s *intervalSet) overlaps(start, end int) bool {
	// 起始位置不小于end的区间不可能相交
	idx := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].start >= end
	})
	for k := idx - 1; k >= 0; k-- {
		it := s.items[k]
		if it.start+s.maxLen <= start {
			break
		}
		if min(it.end, end)-max(it.start, start) > s.tolerance {
			return true
		}
	}
	return false
}

// insert 插入区间并保持有序
func (s *intervalSet) insert(start, end int) {
	idx := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].start > start
	})
	s.items = append(s.items, interval{})
	copy(s.items[idx+1:], s.items[idx:])
	s.items[idx] = interval{start: start, end: end}
	if end-start > s.maxLen {
		s.maxLen = end - start
	}
}
