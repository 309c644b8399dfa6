package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTokenJanitor_Sweep(t *testing.T) {
	log, hook := test.NewNullLogger()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("deletes tokens older than max age", func(t *testing.T) {
		repo := &mockRepo{}
		j := NewTokenJanitor(repo, time.Hour, 48*time.Hour, log)
		j.now = func() time.Time { return now }
		repo.On("DeleteStaleTokens", now.Add(-48*time.Hour)).Return(int64(3), nil).Once()

		assert.EqualValues(t, 3, j.sweep())
		repo.AssertExpectations(t)
	})

	t.Run("repository error is logged", func(t *testing.T) {
		hook.Reset()
		repo := &mockRepo{}
		j := NewTokenJanitor(repo, time.Hour, 48*time.Hour, log)
		j.now = func() time.Time { return now }
		repo.On("DeleteStaleTokens", mock.Anything).Return(int64(0), errors.New("db down")).Once()

		assert.Zero(t, j.sweep())
		assert.Equal(t, "failed to delete stale device tokens", hook.LastEntry().Message)
	})
}

func TestTokenJanitor_RunStopsOnCancel(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := &mockRepo{}
	repo.On("DeleteStaleTokens", mock.Anything).Return(int64(0), nil)
	j := NewTokenJanitor(repo, time.Hour, time.Hour, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestTokenJanitor_Disabled(t *testing.T) {
	log, _ := test.NewNullLogger()
	repo := &mockRepo{}
	NewTokenJanitor(repo, 0, time.Hour, log).Run(context.Background())
	repo.AssertNotCalled(t, "DeleteStaleTokens", mock.Anything)
}
