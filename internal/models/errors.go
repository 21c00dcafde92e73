package models

import "errors"

var (
	// ErrEmptyReport 报告中没有任何匹配
	ErrEmptyReport = errors.New("comparison report has no matches")
)
