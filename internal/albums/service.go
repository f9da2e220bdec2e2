package albums

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/database/repo/albums"
	"github.com/anoixa/album-chat/database/repo/chats"
	"github.com/anoixa/album-chat/database/repo/images"
	"github.com/anoixa/album-chat/internal/access"
	"github.com/anoixa/album-chat/internal/apperr"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	maxPathLength        = 512
)

// LiveSessions 断开已失去权限的实时连接
type LiveSessions interface {
	EvictUser(chatID, userID uint, reason string) int
	EvictChat(chatID uint, reason string) int
}

// Service 相册服务层，所有写操作先经过权限判定
type Service struct {
	access   *access.Engine
	albums   *albums.Repository
	images   *images.Repository
	accounts *accounts.Repository
	chats    *chats.Repository
	sessions LiveSessions
}

// NewService 创建新的相册服务
func NewService(engine *access.Engine, albumRepo *albums.Repository, imageRepo *images.Repository, accountRepo *accounts.Repository, chatRepo *chats.Repository, sessions LiveSessions) *Service {
	return &Service{
		access:   engine,
		albums:   albumRepo,
		images:   imageRepo,
		accounts: accountRepo,
		chats:    chatRepo,
		sessions: sessions,
	}
}

// AlbumView 相册及当前用户的角色
type AlbumView struct {
	*models.Album
	Role string `json:"role"`
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.InvalidInput("Title must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apperr.InvalidInput(fmt.Sprintf("Title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}

// CreateAlbum 创建相册，创建者即所有者
func (s *Service) CreateAlbum(ctx context.Context, userID uint, title string) (*models.Album, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	album := &models.Album{Title: title, OwnerID: userID}
	if err := s.albums.CreateAlbum(ctx, album); err != nil {
		return nil, apperr.Internal("failed to create album", err)
	}
	return album, nil
}

// ListAlbums 列出用户拥有或参与的相册
func (s *Service) ListAlbums(ctx context.Context, userID uint) ([]AlbumView, error) {
	list, err := s.albums.GetUserAlbums(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list albums", err)
	}

	views := make([]AlbumView, 0, len(list))
	for _, album := range list {
		role := access.RoleParticipant
		if album.OwnerID == userID {
			role = access.RoleOwner
		}
		views = append(views, AlbumView{Album: album, Role: role.String()})
	}
	return views, nil
}

// GetAlbum 获取相册详情
func (s *Service) GetAlbum(ctx context.Context, albumID, userID uint) (*AlbumView, error) {
	album, role, err := s.access.RequireAlbumAccess(ctx, albumID, userID)
	if err != nil {
		return nil, err
	}
	return &AlbumView{Album: album, Role: role.String()}, nil
}

// UpdateAlbumTitle 修改标题，仅所有者
func (s *Service) UpdateAlbumTitle(ctx context.Context, albumID, userID uint, title string) (*models.Album, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	album, err := s.access.RequireAlbumOwner(ctx, albumID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.albums.UpdateAlbumTitle(ctx, albumID, title); err != nil {
		if errors.Is(err, albums.ErrAlbumNotFound) {
			return nil, apperr.NotFound("Album not found")
		}
		return nil, apperr.Internal("failed to update album", err)
	}
	album.Title = title
	return album, nil
}

// DeleteAlbum 删除相册及其全部内容，仅所有者
func (s *Service) DeleteAlbum(ctx context.Context, albumID, userID uint) error {
	if _, err := s.access.RequireAlbumOwner(ctx, albumID, userID); err != nil {
		return err
	}

	// 聊天随相册级联删除，先记下 ID
	chatIDs, err := s.chats.ListChatIDsByAlbum(ctx, albumID)
	if err != nil {
		return apperr.Internal("failed to load album chats", err)
	}

	if err := s.albums.DeleteAlbum(ctx, albumID); err != nil {
		if errors.Is(err, albums.ErrAlbumNotFound) {
			return apperr.NotFound("Album not found")
		}
		return apperr.Internal("failed to delete album", err)
	}

	for _, chatID := range chatIDs {
		s.sessions.EvictChat(chatID, "Album was deleted")
	}
	return nil
}
