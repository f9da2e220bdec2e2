package albums

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/chats"
	"github.com/anoixa/album-chat/database/repo/images"
	"github.com/anoixa/album-chat/internal/apperr"
	"gorm.io/gorm"
)

// ImageInput 创建或修改图片的参数
type ImageInput struct {
	Title       string
	Description *string
	Path        string
}

func (in ImageInput) normalize() (ImageInput, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return in, err
	}
	in.Title = title

	in.Path = strings.TrimSpace(in.Path)
	if in.Path == "" {
		return in, apperr.InvalidInput("Image path must not be empty")
	}
	if len(in.Path) > maxPathLength {
		return in, apperr.InvalidInput(fmt.Sprintf("Image path must be at most %d bytes", maxPathLength))
	}

	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(desc) > maxDescriptionLength {
			return in, apperr.InvalidInput(fmt.Sprintf("Description must be at most %d characters", maxDescriptionLength))
		}
		if desc == "" {
			in.Description = nil
		} else {
			in.Description = &desc
		}
	}
	return in, nil
}

// ListImages 列出相册中的图片
func (s *Service) ListImages(ctx context.Context, albumID, userID uint) ([]*models.Image, error) {
	if _, _, err := s.access.RequireAlbumAccess(ctx, albumID, userID); err != nil {
		return nil, err
	}

	list, err := s.images.ListAlbumImages(ctx, albumID)
	if err != nil {
		return nil, apperr.Internal("failed to list images", err)
	}
	return list, nil
}

// GetImage 获取相册中的单张图片
func (s *Service) GetImage(ctx context.Context, albumID, imageID, userID uint) (*models.Image, error) {
	image, _, err := s.access.RequireImageAccess(ctx, albumID, imageID, userID)
	return image, err
}

// CreateImage 向相册添加图片记录，仅所有者
func (s *Service) CreateImage(ctx context.Context, albumID, userID uint, in ImageInput) (*models.Image, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAlbumOwner(ctx, albumID, userID); err != nil {
		return nil, err
	}

	image := &models.Image{
		Title:       in.Title,
		Description: in.Description,
		Path:        in.Path,
		AlbumID:     albumID,
	}
	if err := s.images.CreateImage(ctx, image); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Image already exists in this album")
		}
		return nil, apperr.Internal("failed to create image", err)
	}
	return image, nil
}

// UpdateImage 修改图片信息，仅所有者
func (s *Service) UpdateImage(ctx context.Context, albumID, imageID, userID uint, in ImageInput) (*models.Image, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAlbumOwner(ctx, albumID, userID); err != nil {
		return nil, err
	}

	image, err := s.images.GetAlbumImage(ctx, albumID, imageID)
	if err != nil {
		return nil, translateImageError(err, "failed to load image")
	}

	image.Title = in.Title
	image.Description = in.Description
	image.Path = in.Path
	if err := s.images.UpdateImage(ctx, image); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Image already exists in this album")
		}
		return nil, translateImageError(err, "failed to update image")
	}
	return image, nil
}

// DeleteImage 删除图片及其聊天，仅所有者
func (s *Service) DeleteImage(ctx context.Context, albumID, imageID, userID uint) error {
	if _, err := s.access.RequireAlbumOwner(ctx, albumID, userID); err != nil {
		return err
	}
	chat, err := s.chats.GetChatByImageID(ctx, imageID)
	if err != nil && !errors.Is(err, chats.ErrChatNotFound) {
		return apperr.Internal("failed to load image chat", err)
	}

	if err := s.images.DeleteImage(ctx, albumID, imageID); err != nil {
		return translateImageError(err, "failed to delete image")
	}

	if chat != nil {
		s.sessions.EvictChat(chat.ID, "Image was deleted")
	}
	return nil
}

func translateImageError(err error, msg string) error {
	if errors.Is(err, images.ErrImageNotFound) {
		return apperr.NotFound("Image not found")
	}
	return apperr.Internal(msg, err)
}
