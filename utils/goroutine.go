package utils

import "log"

// SafeGo 拦截 panic 的 goroutine
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[SafeGo] panic recovered: %v", err)
			}
		}()
		fn()
	}()
}

// SafeGoNamed 同 SafeGo，日志中带上任务名称
func SafeGoNamed(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[SafeGo] %s: panic recovered: %v", name, err)
			}
		}()
		fn()
	}()
}
