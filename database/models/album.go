package models

import "time"

type Album struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlbumParticipant 相册共享关系，(UserID, AlbumID) 为联合主键
type AlbumParticipant struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	AlbumID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"album_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Album     *Album    `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
