package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/internal/apperr"
	cryptopackage "github.com/anoixa/album-chat/utils/crypto"
	"github.com/anoixa/album-chat/utils/validator"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperr.Unauthenticated("Invalid email or password")

// LoginResult 登录结果
type LoginResult struct {
	User              *models.User
	AccessToken       string
	AccessTokenExpiry time.Time
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// UserSessions 断开用户的全部实时连接
type UserSessions interface {
	EvictUserEverywhere(userID uint, reason string) int
}

// LoginService 登录服务
type LoginService struct {
	accountsRepo *accounts.Repository
	jwtService   *JWTService
	tokens       *TokenManager
	hasher       *cryptopackage.Hasher
	sessions     UserSessions
}

// NewLoginService 创建新的登录服务，sessions 可为 nil
func NewLoginService(
	accountsRepo *accounts.Repository,
	jwtService *JWTService,
	tokens *TokenManager,
	hasher *cryptopackage.Hasher,
	sessions UserSessions,
) *LoginService {
	return &LoginService{
		accountsRepo: accountsRepo,
		jwtService:   jwtService,
		tokens:       tokens,
		hasher:       hasher,
		sessions:     sessions,
	}
}

func validateAccount(email, username, password string) error {
	if !validator.IsEmail(email) {
		return apperr.InvalidInput("Invalid email address")
	}
	if !validator.IsUsername(username) {
		return apperr.InvalidInput("Username must be between 3 and 50 characters")
	}
	if !validator.IsPassword(password) {
		return apperr.InvalidInput("Password must be between 8 and 128 characters")
	}
	return nil
}

// Register 注册新用户
func (s *LoginService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := validator.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if err := validateAccount(email, username, in.Password); err != nil {
		return nil, err
	}

	exists, err := s.accountsRepo.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if exists {
		return nil, apperr.Conflict("Email is already registered")
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{Email: email, Username: username, Password: digest}
	if err := s.accountsRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

// ValidateCredentials 验证用户凭据
func (s *LoginService) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.accountsRepo.GetUserByEmail(ctx, validator.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperr.Internal("failed to get user", err)
	}

	ok, err := s.hasher.Compare(password, user.Password)
	if err != nil {
		return nil, apperr.Internal("password comparison failed", err)
	}
	if !ok {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// Login 执行登录操作
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.ValidateCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, expiry, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}

	return &LoginResult{
		User:              user,
		AccessToken:       token,
		AccessTokenExpiry: expiry,
	}, nil
}

// Authenticate 校验访问令牌并加载当前用户，已注销的令牌和已删除的用户都会被拒绝
func (s *LoginService) Authenticate(ctx context.Context, token string) (*models.User, *TokenClaims, error) {
	claims, err := s.jwtService.ExtractClaims(token)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.CodeUnauthenticated, "Invalid or expired token", err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to check token", err)
	}
	if revoked {
		return nil, nil, apperr.Unauthenticated("Token has been revoked")
	}

	user, err := s.accountsRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, nil, apperr.Unauthenticated("User no longer exists")
		}
		return nil, nil, apperr.Internal("failed to load user", err)
	}
	return user, claims, nil
}

// Logout 注销当前令牌
func (s *LoginService) Logout(ctx context.Context, claims *TokenClaims) error {
	if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt()); err != nil {
		return apperr.Internal("failed to revoke token", err)
	}
	return nil
}
