package usecase

import (
	"errors"
	"testing"
	"time"

	"trialfinder-backend/internal/device/domain"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) SaveToken(userID, token, deviceInfo string) error {
	return m.Called(userID, token, deviceInfo).Error(0)
}

func (m *mockRepo) GetTokensByUserID(userID string) ([]domain.DeviceToken, error) {
	args := m.Called(userID)
	rows, _ := args.Get(0).([]domain.DeviceToken)
	return rows, args.Error(1)
}

func (m *mockRepo) DeleteToken(token string) error {
	return m.Called(token).Error(0)
}

func (m *mockRepo) DeleteUserToken(userID, token string) (bool, error) {
	args := m.Called(userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) DeleteStaleTokens(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

func TestDeviceUsecase(t *testing.T) {
	log, hook := test.NewNullLogger()
	repo := &mockRepo{}
	uc := NewDeviceUsecase(repo, log)

	t.Run("register trims token", func(t *testing.T) {
		repo.On("SaveToken", "u1", "tok", "chrome").Return(nil).Once()
		require.NoError(t, uc.Register("u1", "  tok ", "chrome"))
	})

	t.Run("register requires token", func(t *testing.T) {
		assert.ErrorIs(t, uc.Register("u1", " ", ""), ErrTokenRequired)
	})

	t.Run("unregister unknown token", func(t *testing.T) {
		repo.On("DeleteUserToken", "u1", "missing").Return(false, nil).Once()
		assert.ErrorIs(t, uc.Unregister("u1", "missing"), ErrTokenNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		repo.On("GetTokensByUserID", "u1").Return([]domain.DeviceToken{{Token: "a"}, {Token: "b"}}, nil).Once()
		tokens, err := uc.Tokens("u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tokens)
	})

	t.Run("prune logs failures and continues", func(t *testing.T) {
		hook.Reset()
		repo.On("DeleteToken", "a").Return(errors.New("db down")).Once()
		repo.On("DeleteToken", "b").Return(nil).Once()
		uc.Prune([]string{"a", "b"})
		assert.Len(t, hook.Entries, 2)
	})

	repo.AssertExpectations(t)
}
