package utils

import (
	"context"
	"errors"
)

// IsClientDisconnect 请求上下文被取消，通常是客户端提前断开
func IsClientDisconnect(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// IsContextDone 上下文被取消或超时
func IsContextDone(err error) bool {
	return IsClientDisconnect(err) || errors.Is(err, context.DeadlineExceeded)
}
