package albums

import (
	"context"
	"testing"

	"github.com/anoixa/album-chat/database"
	"github.com/anoixa/album-chat/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	provider, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return NewRepository(provider), provider.DB()
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: email, Password: "digest"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// --- 测试 CreateAlbum ---

func TestRepository_CreateAlbum(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")

	album := &models.Album{Title: "Test Album", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, album))
	assert.NotZero(t, album.ID)

	got, err := repo.GetAlbumByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test Album", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)
}

// --- 测试 GetAlbumByID ---

func TestRepository_GetAlbumByID_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)
	_, err := repo.GetAlbumByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrAlbumNotFound)
}

// --- 测试 GetUserAlbums ---

func TestRepository_GetUserAlbums_OwnedAndParticipating(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	own := &models.Album{Title: "Bob's", OwnerID: bob.ID}
	shared := &models.Album{Title: "Alice's shared", OwnerID: alice.ID}
	private := &models.Album{Title: "Alice's private", OwnerID: alice.ID}
	for _, a := range []*models.Album{own, shared, private} {
		require.NoError(t, repo.CreateAlbum(ctx, a))
	}
	require.NoError(t, repo.AddParticipant(ctx, &models.AlbumParticipant{UserID: bob.ID, AlbumID: shared.ID}))

	albums, err := repo.GetUserAlbums(ctx, bob.ID)
	require.NoError(t, err)

	ids := make([]uint, 0, len(albums))
	for _, a := range albums {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []uint{own.ID, shared.ID}, ids)
}

// --- 测试 UpdateAlbumTitle ---

func TestRepository_UpdateAlbumTitle(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	album := &models.Album{Title: "Old", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, album))

	require.NoError(t, repo.UpdateAlbumTitle(ctx, album.ID, "New"))
	got, err := repo.GetAlbumByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)

	assert.ErrorIs(t, repo.UpdateAlbumTitle(ctx, 999, "x"), ErrAlbumNotFound)
}

// --- 测试 DeleteAlbum ---

func TestRepository_DeleteAlbum_Cascades(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")

	album := &models.Album{Title: "Trip", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, album))
	other := &models.Album{Title: "Other", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, other))
	require.NoError(t, repo.AddParticipant(ctx, &models.AlbumParticipant{UserID: member.ID, AlbumID: album.ID}))

	image := &models.Image{Title: "beach", Path: "/beach.jpg", AlbumID: album.ID}
	require.NoError(t, db.Create(image).Error)
	otherImage := &models.Image{Title: "city", Path: "/city.jpg", AlbumID: other.ID}
	require.NoError(t, db.Create(otherImage).Error)

	chat := &models.Chat{ImageID: image.ID}
	require.NoError(t, db.Create(chat).Error)
	otherChat := &models.Chat{ImageID: otherImage.ID}
	require.NoError(t, db.Create(otherChat).Error)
	require.NoError(t, db.Create(&models.Message{Content: "hi", SenderID: owner.ID, ChatID: chat.ID}).Error)
	require.NoError(t, db.Create(&models.Message{Content: "keep", SenderID: owner.ID, ChatID: otherChat.ID}).Error)

	require.NoError(t, repo.DeleteAlbum(ctx, album.ID))

	var count int64
	db.Model(&models.Album{}).Where("id = ?", album.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Image{}).Where("album_id = ?", album.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Chat{}).Where("id = ?", chat.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Message{}).Where("chat_id = ?", chat.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.AlbumParticipant{}).Where("album_id = ?", album.ID).Count(&count)
	assert.Zero(t, count)

	// 其它相册不受影响
	db.Model(&models.Message{}).Where("chat_id = ?", otherChat.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRepository_DeleteAlbum_NotFound(t *testing.T) {
	repo, _ := setupTestDB(t)
	assert.ErrorIs(t, repo.DeleteAlbum(context.Background(), 999), ErrAlbumNotFound)
}

// --- 测试参与者 ---

func TestRepository_Participants(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	album := &models.Album{Title: "Trip", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, album))

	ok, err := repo.IsParticipant(ctx, album.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.AddParticipant(ctx, &models.AlbumParticipant{UserID: member.ID, AlbumID: album.ID}))

	ok, err = repo.IsParticipant(ctx, album.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	participants, err := repo.ListParticipants(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	require.NotNil(t, participants[0].User)
	assert.Equal(t, "member@example.com", participants[0].User.Email)

	require.NoError(t, repo.RemoveParticipant(ctx, album.ID, member.ID))
	_, err = repo.GetParticipant(ctx, album.ID, member.ID)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.ErrorIs(t, repo.RemoveParticipant(ctx, album.ID, member.ID), ErrParticipantNotFound)
}

func TestRepository_AddParticipant_Duplicate(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com")
	member := createUser(t, db, "member@example.com")
	album := &models.Album{Title: "Trip", OwnerID: owner.ID}
	require.NoError(t, repo.CreateAlbum(ctx, album))

	require.NoError(t, repo.AddParticipant(ctx, &models.AlbumParticipant{UserID: member.ID, AlbumID: album.ID}))
	err := repo.AddParticipant(ctx, &models.AlbumParticipant{UserID: member.ID, AlbumID: album.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
