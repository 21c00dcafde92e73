package matcher

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 比较配置无效
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError 配置错误
// 阈值越界、top_n非正、嵌入向量与段落数量不一致等情况在任何匹配器运行前返回
type ConfigError struct {
	Field  string      // 出错的配置项
	Value  interface{} // 实际值
	Reason string      // 原因
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap 支持 errors.Is(err, ErrInvalidConfig)
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfigError 创建配置错误
func NewConfigError(field string, value interface{}, reason string) *ConfigError {
	return &ConfigError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}
