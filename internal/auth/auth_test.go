package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/album-chat/cache"
	"github.com/anoixa/album-chat/cache/memory"
	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/database/repo/accounts"
	"github.com/anoixa/album-chat/internal/apperr"
	cryptopackage "github.com/anoixa/album-chat/utils/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testSecret = []byte(strings.Repeat("s", 32))

func newJWT(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(TokenConfig{Secret: testSecret, ExpiresIn: 30 * time.Minute})
	require.NoError(t, err)
	return svc
}

// recordingSessions 记录被断开的用户
type recordingSessions struct {
	evicted []uint
}

func (r *recordingSessions) EvictUserEverywhere(userID uint, _ string) int {
	r.evicted = append(r.evicted, userID)
	return 1
}

type fixture struct {
	svc      *LoginService
	jwt      *JWTService
	tokens   *TokenManager
	sessions *recordingSessions
	db       *gorm.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()
	provider, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	mem, err := memory.NewMemory(memory.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	repo := accounts.NewRepository(provider)
	f := &fixture{
		jwt:      newJWT(t),
		tokens:   NewTokenManager(repo, mem),
		sessions: &recordingSessions{},
		db:       provider.DB(),
	}
	hasher := cryptopackage.NewHasher(cryptopackage.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	f.svc = NewLoginService(repo, f.jwt, f.tokens, hasher, f.sessions)
	return f
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Username: "alice", Password: "password123"})
	require.NoError(t, err)
	return user
}

// --- 测试 JWTService ---

func TestNewJWTService_ShortSecret(t *testing.T) {
	_, err := NewJWTService(TokenConfig{Secret: []byte("short"), ExpiresIn: time.Minute})
	assert.Error(t, err)

	_, err = NewJWTService(TokenConfig{Secret: testSecret})
	assert.Error(t, err)
}

func TestJWTService_GenerateAndExtract(t *testing.T) {
	svc := newJWT(t)

	token, expiry, err := svc.GenerateAccessToken(7, "a@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiry, 5*time.Second)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, expiry.Unix(), claims.ExpiresAt().Unix())

	other, _, err := svc.GenerateAccessToken(7, "a@example.com")
	require.NoError(t, err)
	otherClaims, err := svc.ExtractClaims(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := newJWT(t)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.GenerateAccessToken(1, "a@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ExtractClaims(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	svc := newJWT(t)
	other, err := NewJWTService(TokenConfig{Secret: []byte(strings.Repeat("x", 32)), ExpiresIn: time.Minute})
	require.NoError(t, err)

	token, _, err := other.GenerateAccessToken(1, "a@example.com")
	require.NoError(t, err)
	_, err = svc.ExtractClaims(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsNonAccessToken(t *testing.T) {
	svc := newJWT(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":     "abc",
		"user_id": 1,
		"type":    "refresh",
		"exp":     time.Now().Add(time.Minute).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = svc.ExtractClaims(token)
	assert.Error(t, err)
}

// --- 测试 TokenManager ---

// rejectingCache 拒绝所有写入的缓存
type rejectingCache struct {
	cache.Provider
}

func (rejectingCache) Set(context.Context, string, interface{}, time.Duration) error {
	return cache.ErrNotStored
}

func (rejectingCache) Exists(context.Context, string) (bool, error) {
	return false, nil
}

func TestTokenManager_Revoke(t *testing.T) {
	f := setup(t)
	m := f.tokens
	ctx := context.Background()

	revoked, err := m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// 已过期的令牌无需记录
	require.NoError(t, m.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = m.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenManager_RevocationSurvivesCacheRejection(t *testing.T) {
	provider, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	m := NewTokenManager(accounts.NewRepository(provider), rejectingCache{})
	ctx := context.Background()

	require.NoError(t, m.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err := m.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestTokenManager_RevokeBeyondCacheCapacity(t *testing.T) {
	provider, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })

	// 容量远小于注销数量的缓存
	mem, err := memory.NewMemory(memory.Config{NumCounters: 1000, MaxCost: 100, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	m := NewTokenManager(accounts.NewRepository(provider), mem)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	const n = 2000
	for i := 0; i < n; i++ {
		require.NoError(t, m.Revoke(ctx, fmt.Sprintf("jti-%d", i), expiresAt))
	}

	missing := 0
	for i := 0; i < n; i++ {
		revoked, err := m.IsRevoked(ctx, fmt.Sprintf("jti-%d", i))
		require.NoError(t, err)
		if !revoked {
			missing++
		}
	}
	assert.Zero(t, missing)
}

// --- 测试 注册与登录 ---

func TestLoginService_Register(t *testing.T) {
	f := setup(t)

	user := f.register(t, "  Alice@Example.com ")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)
	assert.True(t, strings.HasPrefix(user.Password, "$argon2id$"))

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "alice@example.com", Username: "other", Password: "password123"})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestLoginService_Register_InvalidInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "not-an-email", Username: "alice", Password: "password123"},
		{Email: "a@example.com", Username: "al", Password: "password123"},
		{Email: "a@example.com", Username: "alice", Password: "short"},
	}
	for _, in := range cases {
		_, err := f.svc.Register(ctx, in)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidInput), "%+v", in)
	}
}

func TestLoginService_Login(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com")

	result, err := f.svc.Login(ctx, "ALICE@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)

	_, err = f.svc.Login(ctx, "alice@example.com", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))

	_, err = f.svc.Login(ctx, "nobody@example.com", "password123")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

func TestLoginService_AuthenticateAndLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com")

	result, err := f.svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	got, claims, err := f.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, f.svc.Logout(ctx, claims))

	_, _, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))

	_, _, err = f.svc.Authenticate(ctx, "garbage")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
}

// --- 测试 账户 ---

func TestLoginService_UpdateAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com")
	f.register(t, "bob@example.com")

	taken := "bob@example.com"
	_, err := f.svc.UpdateAccount(ctx, user.ID, UpdateInput{Email: &taken})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	email := "alice2@example.com"
	name := "alice two"
	password := "new-password-1"
	updated, err := f.svc.UpdateAccount(ctx, user.ID, UpdateInput{Email: &email, Username: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, name, updated.Username)

	_, err = f.svc.Login(ctx, email, "password123")
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	_, err = f.svc.Login(ctx, email, password)
	assert.NoError(t, err)

	bad := "x"
	_, err = f.svc.UpdateAccount(ctx, user.ID, UpdateInput{Username: &bad})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))
}

func TestLoginService_DeleteAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := f.register(t, "alice@example.com")

	result, err := f.svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	album := &models.Album{Title: "mine", OwnerID: user.ID}
	require.NoError(t, f.db.Create(album).Error)
	err = f.svc.DeleteAccount(ctx, user.ID, nil)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Empty(t, f.sessions.evicted)

	require.NoError(t, f.db.Delete(album).Error)
	require.NoError(t, f.svc.DeleteAccount(ctx, user.ID, nil))
	assert.Equal(t, []uint{user.ID}, f.sessions.evicted)

	// 已删除用户的令牌失效
	_, _, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))

	// 邮箱可以重新注册
	again := f.register(t, "alice@example.com")
	assert.NotEqual(t, user.ID, again.ID)
}
