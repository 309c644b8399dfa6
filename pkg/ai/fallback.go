package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
)

// FallbackService implements smart AI provider routing with fallback.
// The primary provider is tried first; a quota or connection failure moves the
// call to the secondary, and a connection failure on the secondary retries the
// primary once.
type FallbackService struct {
	primary   Completer
	secondary Completer
	log       logrus.FieldLogger
}

// NewFallbackService creates a new fallback service over two providers.
// Either may be nil.
func NewFallbackService(primary, secondary Completer, log logrus.FieldLogger) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
		log:       log.WithField("component", "ai.fallback"),
	}
}

func (f *FallbackService) Name() string {
	switch {
	case f.primary != nil && f.secondary != nil:
		return f.primary.Name() + "+" + f.secondary.Name()
	case f.primary != nil:
		return f.primary.Name()
	case f.secondary != nil:
		return f.secondary.Name()
	}
	return "none"
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}
	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
		"overloaded",
	}
	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// Complete tries the primary provider, then the secondary.
func (f *FallbackService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if f.primary != nil {
		result, err := f.primary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		if f.secondary == nil {
			return "", err
		}
		fields := logrus.Fields{"provider": f.primary.Name(), "fallback": f.secondary.Name()}
		switch {
		case isQuotaError(err):
			f.log.WithFields(fields).WithError(err).Warn("provider quota exhausted, falling back")
		case isConnectionError(err):
			f.log.WithFields(fields).WithError(err).Warn("provider connection failed, falling back")
		default:
			f.log.WithFields(fields).WithError(err).Warn("provider error, falling back")
		}
	}

	if f.secondary != nil {
		result, err := f.secondary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
		if isConnectionError(err) && f.primary != nil && ctx.Err() == nil {
			f.log.WithField("provider", f.secondary.Name()).WithError(err).Warn("fallback connection failed, retrying primary")
			return f.primary.Complete(ctx, req)
		}
		return "", fmt.Errorf("%s completion failed: %w", f.secondary.Name(), err)
	}

	return "", ErrProviderUnavailable
}
