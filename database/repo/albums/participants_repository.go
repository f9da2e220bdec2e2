package albums

import (
	"context"
	"errors"

	"github.com/anoixa/album-chat/database/models"
	"gorm.io/gorm"
)

// GetParticipant 获取参与关系，不存在时返回 ErrParticipantNotFound
func (r *Repository) GetParticipant(ctx context.Context, albumID, userID uint) (*models.AlbumParticipant, error) {
	var participant models.AlbumParticipant
	err := r.db.WithContext(ctx).
		Where("album_id = ? AND user_id = ?", albumID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// IsParticipant 检查用户是否参与了相册
func (r *Repository) IsParticipant(ctx context.Context, albumID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AlbumParticipant{}).
		Where("album_id = ? AND user_id = ?", albumID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddParticipant 添加参与者，重复添加返回 gorm.ErrDuplicatedKey
func (r *Repository) AddParticipant(ctx context.Context, participant *models.AlbumParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// RemoveParticipant 移除参与者
func (r *Repository) RemoveParticipant(ctx context.Context, albumID, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("album_id = ? AND user_id = ?", albumID, userID).
		Delete(&models.AlbumParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// ListParticipants 列出相册参与者，附带用户信息
func (r *Repository) ListParticipants(ctx context.Context, albumID uint) ([]*models.AlbumParticipant, error) {
	var participants []*models.AlbumParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("album_id = ?", albumID).
		Order("created_at asc").
		Find(&participants).Error
	return participants, err
}
