package models

import "time"

// Chat 每张图片至多一个，首次访问时创建
type Chat struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID   uint      `gorm:"not null;uniqueIndex:idx_chats_image" json:"image_id"`
	Image     *Image    `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Message 创建后不可修改
type Message struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	SentAt   time.Time `gorm:"not null;index:idx_messages_chat_sent,priority:2" json:"sent_at"`
	SenderID uint      `gorm:"not null;index" json:"sender_id"`
	ChatID   uint      `gorm:"not null;index:idx_messages_chat_sent,priority:1" json:"chat_id"`
	Chat     *Chat     `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}
