// Package validator 校验账户字段，规则与请求体上的 binding 标签保持一致。
package validator

import (
	"strings"
	"sync"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 255
)

var (
	validate     *playground.Validate
	validateOnce sync.Once
)

func instance() *playground.Validate {
	validateOnce.Do(func() {
		validate = playground.New()
	})
	return validate
}

// NormalizeEmail 去除空白并转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsEmail 检查邮箱格式
func IsEmail(email string) bool {
	if len(email) > MaxEmailLength {
		return false
	}
	return instance().Var(email, "required,email") == nil
}

// IsUsername 检查用户名长度，按字符计算
func IsUsername(username string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	return n >= MinUsernameLength && n <= MaxUsernameLength
}

// IsPassword 检查密码长度
func IsPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	return n >= MinPasswordLength && n <= MaxPasswordLength
}
