package usecase

import (
	"errors"
	"strings"

	"trialfinder-backend/internal/device/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrTokenRequired = errors.New("device token is required")
	ErrTokenNotFound = errors.New("device token not found")
)

// DeviceUsecase manages push registrations for the notification service
type DeviceUsecase interface {
	Register(userID, token, deviceInfo string) error
	Unregister(userID, token string) error
	// Tokens lists the push tokens registered by userID
	Tokens(userID string) ([]string, error)
	// Prune drops tokens that FCM rejected
	Prune(tokens []string)
}

type deviceUsecase struct {
	repo repository.DeviceTokenRepository
	log  logrus.FieldLogger
}

func NewDeviceUsecase(repo repository.DeviceTokenRepository, log logrus.FieldLogger) DeviceUsecase {
	return &deviceUsecase{
		repo: repo,
		log:  log.WithField("component", "device"),
	}
}

func (u *deviceUsecase) Register(userID, token, deviceInfo string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenRequired
	}
	if len(deviceInfo) > 255 {
		deviceInfo = deviceInfo[:255]
	}
	return u.repo.SaveToken(userID, token, deviceInfo)
}

func (u *deviceUsecase) Unregister(userID, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrTokenRequired
	}
	deleted, err := u.repo.DeleteUserToken(userID, token)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTokenNotFound
	}
	return nil
}

func (u *deviceUsecase) Tokens(userID string) ([]string, error) {
	rows, err := u.repo.GetTokensByUserID(userID)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(rows))
	for _, r := range rows {
		tokens = append(tokens, r.Token)
	}
	return tokens, nil
}

func (u *deviceUsecase) Prune(tokens []string) {
	for _, t := range tokens {
		if err := u.repo.DeleteToken(t); err != nil {
			u.log.WithError(err).Warn("failed to delete rejected device token")
		}
	}
	if len(tokens) > 0 {
		u.log.WithField("count", len(tokens)).Info("pruned rejected device tokens")
	}
}
