// Package cache provides the tiers used to cache registry and LLM output.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is a single cache tier.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Tiered reads through its stores in order and backfills faster tiers on a
// hit in a slower one. Tier errors are logged and treated as misses.
type Tiered struct {
	stores []Store
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewTiered(ttl time.Duration, log logrus.FieldLogger, stores ...Store) *Tiered {
	active := make([]Store, 0, len(stores))
	for _, s := range stores {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Tiered{stores: active, ttl: ttl, log: log.WithField("component", "cache")}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	for i, s := range t.stores {
		val, ok, err := s.Get(ctx, key)
		if err != nil {
			t.log.WithError(err).WithField("tier", i).Warn("cache read failed")
			continue
		}
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			if err := t.stores[j].Set(ctx, key, val, t.ttl); err != nil {
				t.log.WithError(err).WithField("tier", j).Warn("cache backfill failed")
			}
		}
		return val, true, nil
	}
	return nil, false, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = t.ttl
	}
	for i, s := range t.stores {
		if err := s.Set(ctx, key, value, ttl); err != nil {
			t.log.WithError(err).WithField("tier", i).Warn("cache write failed")
		}
	}
	return nil
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	for i, s := range t.stores {
		if err := s.Delete(ctx, key); err != nil {
			t.log.WithError(err).WithField("tier", i).Warn("cache delete failed")
		}
	}
	return nil
}

// GetJSON decodes a cached value into out.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		_ = s.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes value and stores it.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.Set(ctx, key, raw, ttl)
}
