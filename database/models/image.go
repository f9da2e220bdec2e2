package models

import "time"

// Image 只保存元数据和路径，图片字节不在本服务存储
type Image struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description *string   `gorm:"type:varchar(1000)" json:"description"`
	Path        string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_album_image_path,priority:2" json:"image_path"`
	AlbumID     uint      `gorm:"not null;uniqueIndex:idx_album_image_path,priority:1" json:"album_id"`
	Album       *Album    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
