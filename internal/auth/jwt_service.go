package auth

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTypeAccess = "access"

// TokenClaims JWT 令牌声明
type TokenClaims struct {
	ID     string
	UserID uint
	Email  string
	Type   string
	Exp    int64
	Iat    int64
}

// ExpiresAt 令牌过期时间
func (c *TokenClaims) ExpiresAt() time.Time {
	return time.Unix(c.Exp, 0)
}

// TokenConfig 保存 JWT 配置
type TokenConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

// JWTService JWT Token 服务
type JWTService struct {
	config TokenConfig
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(config TokenConfig) (*JWTService, error) {
	s := &JWTService{now: time.Now}
	if err := s.applyConfig(config); err != nil {
		return nil, err
	}
	return s, nil
}

// applyConfig 校验并应用 JWT 配置
func (s *JWTService) applyConfig(config TokenConfig) error {
	if len(config.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(config.Secret))
	}
	if config.ExpiresIn <= 0 {
		return fmt.Errorf("invalid JWT access token TTL: %v", config.ExpiresIn)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.config = TokenConfig{
		Secret:    append([]byte{}, config.Secret...),
		ExpiresIn: config.ExpiresIn,
	}

	log.Printf("[JWT] Config loaded - Access: %v", config.ExpiresIn)
	return nil
}

// GetConfig 获取当前 JWT 配置（只读）
func (s *JWTService) GetConfig() TokenConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TokenConfig{
		Secret:    append([]byte{}, s.config.Secret...),
		ExpiresIn: s.config.ExpiresIn,
	}
}

// GenerateAccessToken 生成访问令牌，每个令牌带唯一 jti 以便注销
func (s *JWTService) GenerateAccessToken(userID uint, email string) (string, time.Time, error) {
	config := s.GetConfig()

	now := s.now()
	expiry := now.Add(config.ExpiresIn)
	claims := jwt.MapClaims{
		"jti":     uuid.NewString(),
		"user_id": userID,
		"email":   email,
		"type":    tokenTypeAccess,
		"exp":     expiry.Unix(),
		"iat":     now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	config := s.GetConfig()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ExtractClaims 解析令牌并提取声明，只接受访问令牌
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	jti, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)
	tokenType, _ := claims["type"].(string)
	userIDFloat, _ := claims["user_id"].(float64)
	expFloat, _ := claims["exp"].(float64)
	iatFloat, _ := claims["iat"].(float64)

	if tokenType != tokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	if jti == "" || userIDFloat <= 0 {
		return nil, errors.New("incomplete token claims")
	}

	return &TokenClaims{
		ID:     jti,
		UserID: uint(userIDFloat),
		Email:  email,
		Type:   tokenType,
		Exp:    int64(expFloat),
		Iat:    int64(iatFloat),
	}, nil
}
