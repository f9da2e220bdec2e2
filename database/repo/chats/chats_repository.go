package chats

import (
	"context"
	"errors"

	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"gorm.io/gorm"
)

// ErrChatNotFound 聊天不存在
var ErrChatNotFound = errors.New("chat not found")

// Repository 聊天与消息仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的聊天仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// GetChatByID 通过ID获取聊天
func (r *Repository) GetChatByID(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).First(&chat, chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetChatByImageID 获取图片对应的聊天
func (r *Repository) GetChatByImageID(ctx context.Context, imageID uint) (*models.Chat, error) {
	var chat models.Chat
	if err := r.db.WithContext(ctx).Where("image_id = ?", imageID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// CreateChat 创建聊天，图片已有聊天时返回 gorm.ErrDuplicatedKey
func (r *Repository) CreateChat(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

// CreateMessage 保存消息
func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListMessages 按发送时间列出聊天消息，时间相同时按 ID 排序
func (r *Repository) ListMessages(ctx context.Context, chatID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("sent_at asc").Order("id asc").
		Find(&messages).Error
	return messages, err
}

// ListChatIDsByAlbum 列出相册中所有图片的聊天 ID
func (r *Repository) ListChatIDsByAlbum(ctx context.Context, albumID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Chat{}).
		Joins("JOIN images ON images.id = chats.image_id").
		Where("images.album_id = ?", albumID).
		Order("chats.id asc").
		Pluck("chats.id", &ids).Error
	return ids, err
}
