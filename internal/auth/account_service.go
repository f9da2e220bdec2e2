package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/internal/apperr"
	"github.com/anoixa/album-chat/utils/validator"
	"gorm.io/gorm"
)

// UpdateInput 修改账户参数，nil 字段保持不变
type UpdateInput struct {
	Email    *string
	Username *string
	Password *string
}

// GetAccount 获取当前用户
func (s *LoginService) GetAccount(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.accountsRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// UpdateAccount 修改邮箱、用户名或密码
func (s *LoginService) UpdateAccount(ctx context.Context, userID uint, in UpdateInput) (*models.User, error) {
	user, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := validator.NormalizeEmail(*in.Email)
		if !validator.IsEmail(email) {
			return nil, apperr.InvalidInput("Invalid email address")
		}
		if email != user.Email {
			exists, err := s.accountsRepo.EmailExists(ctx, email, userID)
			if err != nil {
				return nil, apperr.Internal("failed to check email", err)
			}
			if exists {
				return nil, apperr.Conflict("Email is already registered")
			}
			user.Email = email
		}
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if !validator.IsUsername(username) {
			return nil, apperr.InvalidInput("Username must be between 3 and 50 characters")
		}
		user.Username = username
	}

	if in.Password != nil {
		if !validator.IsPassword(*in.Password) {
			return nil, apperr.InvalidInput("Password must be between 8 and 128 characters")
		}
		digest, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		user.Password = digest
	}

	if err := s.accountsRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email is already registered")
		}
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

// DeleteAccount 删除当前用户，仍拥有相册时拒绝
func (s *LoginService) DeleteAccount(ctx context.Context, userID uint, claims *TokenClaims) error {
	owned, err := s.accountsRepo.CountOwnedAlbums(ctx, userID)
	if err != nil {
		return apperr.Internal("failed to count albums", err)
	}
	if owned > 0 {
		return apperr.Conflict("Delete or hand over your albums before deleting the account")
	}

	if err := s.accountsRepo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("failed to delete user", err)
	}
	if s.sessions != nil {
		s.sessions.EvictUserEverywhere(userID, "Account was deleted")
	}

	if claims != nil {
		return s.Logout(ctx, claims)
	}
	return nil
}
