package utils

import (
	"log"
	"strings"
	"unicode"

	"github.com/anoixa/album-chat/config"
)

// LogIfDev 仅在开发版本输出日志
func LogIfDev(v ...any) {
	if config.IsDevelopment() {
		log.Println(v...)
	}
}

// LogIfDevf 仅在开发版本输出格式化日志
func LogIfDevf(format string, v ...any) {
	if config.IsDevelopment() {
		log.Printf(format, v...)
	}
}

// SanitizeLogMessage 去掉用户输入中的控制字符，避免伪造日志行
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == '\n' || r == '\r' {
			sb.WriteRune(' ')
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Truncate 截断日志中过长的用户输入
func Truncate(msg string, max int) string {
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max]) + "..."
}
