package albums

import (
	"context"
	"errors"
	"log"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/database/repo/albums"
	"github.com/anoixa/album-chat/internal/access"
	"github.com/anoixa/album-chat/internal/apperr"
	"gorm.io/gorm"
)

// ListParticipants 列出相册参与者，所有者和参与者都可查看
func (s *Service) ListParticipants(ctx context.Context, albumID, userID uint) ([]*models.AlbumParticipant, error) {
	if _, _, err := s.access.RequireAlbumAccess(ctx, albumID, userID); err != nil {
		return nil, err
	}

	participants, err := s.albums.ListParticipants(ctx, albumID)
	if err != nil {
		return nil, apperr.Internal("failed to list participants", err)
	}
	return participants, nil
}

// AddParticipant 共享相册给其他用户，仅所有者
func (s *Service) AddParticipant(ctx context.Context, albumID, userID, participantID uint) (*models.AlbumParticipant, error) {
	album, err := s.access.RequireAlbumOwner(ctx, albumID, userID)
	if err != nil {
		return nil, err
	}
	if participantID == album.OwnerID {
		return nil, apperr.InvalidInput("The album owner cannot be added as a participant")
	}

	user, err := s.accounts.GetUserByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}

	participant := &models.AlbumParticipant{UserID: user.ID, AlbumID: albumID}
	if err := s.albums.AddParticipant(ctx, participant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("User is already a participant")
		}
		return nil, apperr.Internal("failed to add participant", err)
	}
	participant.User = user
	return participant, nil
}

// RemoveParticipant 所有者可移除任何参与者，参与者只能移除自己
func (s *Service) RemoveParticipant(ctx context.Context, albumID, userID, participantID uint) error {
	_, role, err := s.access.RequireAlbumAccess(ctx, albumID, userID)
	if err != nil {
		return err
	}
	if role != access.RoleOwner && participantID != userID {
		return apperr.Forbidden("Participants can only remove themselves")
	}

	if err := s.albums.RemoveParticipant(ctx, albumID, participantID); err != nil {
		if errors.Is(err, albums.ErrParticipantNotFound) {
			return apperr.NotFound("Participant not found")
		}
		return apperr.Internal("failed to remove participant", err)
	}

	chatIDs, err := s.chats.ListChatIDsByAlbum(ctx, albumID)
	if err != nil {
		log.Printf("[Albums] Failed to list chats of album %d for eviction: %v", albumID, err)
		return nil
	}
	for _, chatID := range chatIDs {
		s.sessions.EvictUser(chatID, participantID, "Access to this chat was revoked")
	}
	return nil
}
