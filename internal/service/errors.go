package service

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument 调用方传入了未经校验的参数（limit 越界、日期非法等）
var ErrInvalidArgument = errors.New("参数不合法")

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// MalformedRecordError 存储中的会话记录无法归一化
type MalformedRecordError struct {
	Type   ActivityType
	ID     int64
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("记录格式错误 (%s#%d): %s", e.Type, e.ID, e.Reason)
}
