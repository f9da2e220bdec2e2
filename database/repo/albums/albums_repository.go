package albums

import (
	"context"
	"errors"

	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"gorm.io/gorm"
)

var (
	ErrAlbumNotFound       = errors.New("album not found")
	ErrParticipantNotFound = errors.New("participant not found")
)

// Repository 相册仓库 - 封装相册及其参与者的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的相册仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateAlbum 创建相册
func (r *Repository) CreateAlbum(ctx context.Context, album *models.Album) error {
	return r.db.WithContext(ctx).Create(album).Error
}

// GetAlbumByID 通过ID获取相册
func (r *Repository) GetAlbumByID(ctx context.Context, albumID uint) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}
	return &album, nil
}

// GetUserAlbums 获取用户拥有或参与的相册，新建的在前
func (r *Repository) GetUserAlbums(ctx context.Context, userID uint) ([]*models.Album, error) {
	var albums []*models.Album
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (SELECT album_id FROM album_participants WHERE user_id = ?)", userID, userID).
		Order("created_at desc").Order("id desc").
		Find(&albums).Error
	return albums, err
}

// UpdateAlbumTitle 修改相册标题
func (r *Repository) UpdateAlbumTitle(ctx context.Context, albumID uint, title string) error {
	result := r.db.WithContext(ctx).Model(&models.Album{}).Where("id = ?", albumID).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// DeleteAlbum 删除相册，级联删除图片、聊天、消息和参与关系
func (r *Repository) DeleteAlbum(ctx context.Context, albumID uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("chat_id IN (SELECT id FROM chats WHERE image_id IN (SELECT id FROM images WHERE album_id = ?))", albumID).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id IN (SELECT id FROM images WHERE album_id = ?)", albumID).
			Delete(&models.Chat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", albumID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id = ?", albumID).Delete(&models.AlbumParticipant{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Album{}, albumID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlbumNotFound
		}
		return nil
	})
}
