package usecase

import (
	"context"
	"time"

	"trialfinder-backend/internal/device/repository"

	"github.com/sirupsen/logrus"
)

// TokenJanitor removes push tokens whose clients stopped refreshing them.
type TokenJanitor struct {
	repo     repository.DeviceTokenRepository
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewTokenJanitor(repo repository.DeviceTokenRepository, interval, maxAge time.Duration, log logrus.FieldLogger) *TokenJanitor {
	return &TokenJanitor{
		repo:     repo,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		log:      log.WithField("component", "device.janitor"),
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (j *TokenJanitor) Run(ctx context.Context) {
	if j.interval <= 0 || j.maxAge <= 0 {
		j.log.Info("token janitor disabled")
		return
	}
	j.log.WithField("interval", j.interval).Info("starting token janitor")

	j.sweep()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-ctx.Done():
			j.log.Info("token janitor stopped")
			return
		}
	}
}

func (j *TokenJanitor) sweep() int64 {
	cutoff := j.now().Add(-j.maxAge)
	n, err := j.repo.DeleteStaleTokens(cutoff)
	if err != nil {
		j.log.WithError(err).Warn("failed to delete stale device tokens")
		return 0
	}
	if n > 0 {
		j.log.WithField("count", n).Info("deleted stale device tokens")
	}
	return n
}
