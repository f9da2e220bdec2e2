package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUserNotFound 用户不存在（含已软删除）
var ErrUserNotFound = errors.New("user not found")

// Repository 账户仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的账户仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// CreateUser 创建用户，邮箱重复时返回 gorm.ErrDuplicatedKey
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID 通过 ID 获取用户
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 通过邮箱获取用户
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// EmailExists 检查邮箱是否已被其他用户使用，excludeID 为 0 时不排除任何用户
func (r *Repository) EmailExists(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateUser 更新邮箱、用户名和密码摘要
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":    user.Email,
			"username": user.Username,
			"password": user.Password,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountOwnedAlbums 统计用户拥有的相册数量
func (r *Repository) CountOwnedAlbums(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Album{}).Where("owner_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteUser 软删除用户并移除其参与关系，已发送的消息保留
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.AlbumParticipant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// RevokeToken 记录注销的令牌，同时清理已过期的记录
func (r *Repository) RevokeToken(ctx context.Context, jti string, expiresAt, now time.Time) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", now).Delete(&models.RevokedToken{}).Error; err != nil {
			return err
		}
		token := &models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(token).Error
	})
}

// IsTokenRevoked 检查令牌是否在未过期的注销记录中
func (r *Repository) IsTokenRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, now).
		Count(&count).Error
	return count > 0, err
}
