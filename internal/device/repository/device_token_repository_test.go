package repository

import (
	"context"
	"testing"
	"time"

	"trialfinder-backend/internal/device/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DeviceToken{}))
	return db
}

func TestDeviceTokenRepository(t *testing.T) {
	repo := NewDeviceTokenRepository(setupTestDB(t))

	require.NoError(t, repo.SaveToken("owner-1", "tok-a", "chrome"))
	require.NoError(t, repo.SaveToken("owner-1", "tok-b", "firefox"))
	// Same token re-registered by another user moves ownership.
	require.NoError(t, repo.SaveToken("owner-2", "tok-b", "firefox"))

	tokens, err := repo.GetTokensByUserID("owner-1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "tok-a", tokens[0].Token)

	deleted, err := repo.DeleteUserToken("owner-1", "tok-b")
	require.NoError(t, err)
	assert.False(t, deleted, "token owned by someone else")

	deleted, err = repo.DeleteUserToken("owner-2", "tok-b")
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, repo.DeleteToken("tok-a"))
	tokens, err = repo.GetTokensByUserID("owner-1")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestDeviceTokenRepository_DeleteStaleTokens(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceTokenRepository(db)

	require.NoError(t, repo.SaveToken("owner-1", "tok-old", "chrome"))
	require.NoError(t, repo.SaveToken("owner-1", "tok-new", "chrome"))
	old := time.Now().Add(-300 * 24 * time.Hour)
	require.NoError(t, db.Model(&domain.DeviceToken{}).Where("token = ?", "tok-old").Update("updated_at", old).Error)

	n, err := repo.DeleteStaleTokens(time.Now().Add(-270 * 24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	tokens, err := repo.GetTokensByUserID("owner-1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "tok-new", tokens[0].Token)
}
