// Package access 判定用户对相册及其下属资源的访问权限。
//
// 图片、聊天和消息的权限全部归结到所属相册：相册所有者为 RoleOwner，
// 参与者为 RoleParticipant，其余为 RoleNone。每次调用都重新读取数据库，不做缓存，
// 移除参与者后立即生效。
package access

import (
	"context"
	"errors"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/albums"
	"github.com/anoixa/album-chat/database/repo/chats"
	"github.com/anoixa/album-chat/database/repo/images"
	"github.com/anoixa/album-chat/internal/apperr"
)

type Role int

const (
	RoleNone Role = iota
	RoleParticipant
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleParticipant:
		return "participant"
	default:
		return "none"
	}
}

// AlbumStore 相册与参与关系查询
type AlbumStore interface {
	GetAlbumByID(ctx context.Context, albumID uint) (*models.Album, error)
	IsParticipant(ctx context.Context, albumID, userID uint) (bool, error)
}

// ImageStore 图片查询
type ImageStore interface {
	GetImageByID(ctx context.Context, imageID uint) (*models.Image, error)
	GetAlbumImage(ctx context.Context, albumID, imageID uint) (*models.Image, error)
}

// ChatStore 聊天查询
type ChatStore interface {
	GetChatByID(ctx context.Context, chatID uint) (*models.Chat, error)
}

var (
	errAlbumNotFound = apperr.NotFound("Album not found")
	errImageNotFound = apperr.NotFound("Image not found")
	errChatNotFound  = apperr.NotFound("Chat not found")
	errNoAccess      = apperr.Forbidden("You do not have access to this album")
	errNotOwner      = apperr.Forbidden("Only the album owner can do this")
)

// Engine 权限判定
type Engine struct {
	albums AlbumStore
	images ImageStore
	chats  ChatStore
}

// NewEngine 创建权限判定器
func NewEngine(albumStore AlbumStore, imageStore ImageStore, chatStore ChatStore) *Engine {
	return &Engine{albums: albumStore, images: imageStore, chats: chatStore}
}

// ResolveAlbumAccess 返回相册和用户在其中的角色，按 所有者 -> 参与者 -> 无 的顺序判定
func (e *Engine) ResolveAlbumAccess(ctx context.Context, albumID, userID uint) (*models.Album, Role, error) {
	album, err := e.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, albums.ErrAlbumNotFound) {
			return nil, RoleNone, errAlbumNotFound
		}
		return nil, RoleNone, apperr.Internal("failed to load album", err)
	}

	if album.OwnerID == userID {
		return album, RoleOwner, nil
	}

	ok, err := e.albums.IsParticipant(ctx, albumID, userID)
	if err != nil {
		return nil, RoleNone, apperr.Internal("failed to load album participants", err)
	}
	if ok {
		return album, RoleParticipant, nil
	}
	return album, RoleNone, nil
}

// RequireAlbumAccess 要求用户是所有者或参与者
func (e *Engine) RequireAlbumAccess(ctx context.Context, albumID, userID uint) (*models.Album, Role, error) {
	album, role, err := e.ResolveAlbumAccess(ctx, albumID, userID)
	if err != nil {
		return nil, RoleNone, err
	}
	if role == RoleNone {
		return nil, RoleNone, errNoAccess
	}
	return album, role, nil
}

// RequireAlbumOwner 要求用户是相册所有者
func (e *Engine) RequireAlbumOwner(ctx context.Context, albumID, userID uint) (*models.Album, error) {
	album, role, err := e.RequireAlbumAccess(ctx, albumID, userID)
	if err != nil {
		return nil, err
	}
	if role != RoleOwner {
		return nil, errNotOwner
	}
	return album, nil
}

// RequireImageAccess 先检查相册权限，再确认图片属于该相册
func (e *Engine) RequireImageAccess(ctx context.Context, albumID, imageID, userID uint) (*models.Image, Role, error) {
	_, role, err := e.RequireAlbumAccess(ctx, albumID, userID)
	if err != nil {
		return nil, RoleNone, err
	}

	image, err := e.images.GetAlbumImage(ctx, albumID, imageID)
	if err != nil {
		if errors.Is(err, images.ErrImageNotFound) {
			return nil, RoleNone, errImageNotFound
		}
		return nil, RoleNone, apperr.Internal("failed to load image", err)
	}
	return image, role, nil
}

// RequireChatAccess 沿 聊天 -> 图片 -> 相册 检查权限
func (e *Engine) RequireChatAccess(ctx context.Context, chatID, userID uint) (*models.Chat, *models.Image, error) {
	chat, err := e.chats.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chats.ErrChatNotFound) {
			return nil, nil, errChatNotFound
		}
		return nil, nil, apperr.Internal("failed to load chat", err)
	}

	image, err := e.images.GetImageByID(ctx, chat.ImageID)
	if err != nil {
		if errors.Is(err, images.ErrImageNotFound) {
			return nil, nil, errImageNotFound
		}
		return nil, nil, apperr.Internal("failed to load image", err)
	}

	if _, _, err := e.RequireAlbumAccess(ctx, image.AlbumID, userID); err != nil {
		return nil, nil, err
	}
	return chat, image, nil
}
