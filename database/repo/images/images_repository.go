package images

import (
	"context"
	"errors"

	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"gorm.io/gorm"
)

// ErrImageNotFound 图片不存在或不属于指定相册
var ErrImageNotFound = errors.New("image not found")

// Repository 图片仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的图片仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateImage 创建图片记录，同一相册内路径重复时返回 gorm.ErrDuplicatedKey
func (r *Repository) CreateImage(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetImageByID 通过ID获取图片
func (r *Repository) GetImageByID(ctx context.Context, imageID uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// GetAlbumImage 获取指定相册中的图片
func (r *Repository) GetAlbumImage(ctx context.Context, albumID, imageID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("id = ? AND album_id = ?", imageID, albumID).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// ListAlbumImages 列出相册中的图片
func (r *Repository) ListAlbumImages(ctx context.Context, albumID uint) ([]*models.Image, error) {
	var images []*models.Image
	err := r.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("created_at asc").Order("id asc").
		Find(&images).Error
	return images, err
}

// UpdateImage 更新标题、描述和路径
func (r *Repository) UpdateImage(ctx context.Context, image *models.Image) error {
	result := r.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ? AND album_id = ?", image.ID, image.AlbumID).
		Updates(map[string]interface{}{
			"title":       image.Title,
			"description": image.Description,
			"path":        image.Path,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

// DeleteImage 删除图片，级联删除聊天和消息
func (r *Repository) DeleteImage(ctx context.Context, albumID, imageID uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("chat_id IN (SELECT id FROM chats WHERE image_id = ?)", imageID).
			Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", imageID).Delete(&models.Chat{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND album_id = ?", imageID, albumID).Delete(&models.Image{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrImageNotFound
		}
		return nil
	})
}
