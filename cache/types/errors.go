package types

import "errors"

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = &cacheMissError{}

type cacheMissError struct{}

func (e *cacheMissError) Error() string {
	return "cache miss"
}

// IsCacheMiss 判断是否为缓存未命中错误
func IsCacheMiss(err error) bool {
	var cacheMissError *cacheMissError
	return errors.As(err, &cacheMissError)
}

// ErrNotStored 缓存拒绝写入或写入后立即被淘汰
var ErrNotStored = errors.New("cache entry not stored")
