package models

import "time"

// RevokedToken 已注销的令牌，令牌过期后可清理
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;type:varchar(64)" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}
