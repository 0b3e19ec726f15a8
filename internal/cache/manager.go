// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/goblog/internal/store"
)

// configKeyPrefix namespaces config entries in the cache backend.
const configKeyPrefix = "config:"

// Manager provides cached access to site configuration,
// reading through to the database on a miss.
type Manager struct {
	backend Cache
	queries *store.Queries
	ttl     time.Duration
}

// Options configures the cache manager.
type Options struct {
	// RedisURL selects the Redis backend when non-empty; otherwise memory.
	RedisURL string
	// Prefix is the Redis key prefix.
	Prefix string
	// TTL is the default entry lifetime.
	TTL time.Duration
}

// NewManager creates a cache manager with the configured backend.
// Falls back to the memory backend when Redis is unavailable.
func NewManager(db *sql.DB, opts Options) *Manager {
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}

	var backend Cache
	if opts.RedisURL != "" {
		rc, err := NewRedisCache(RedisCacheOptions{
			URL:        opts.RedisURL,
			Prefix:     opts.Prefix,
			DefaultTTL: opts.TTL,
		})
		if err != nil {
			slog.Warn("redis cache unavailable, falling back to memory", "error", err)
		} else {
			backend = rc
		}
	}
	if backend == nil {
		backend = NewMemoryCache(opts.TTL)
	}

	return &Manager{
		backend: backend,
		queries: store.New(db),
		ttl:     opts.TTL,
	}
}

// GetConfig returns a config value by key, reading through the cache.
// Returns an empty string when the key does not exist.
func (m *Manager) GetConfig(ctx context.Context, key string) (string, error) {
	cacheKey := configKeyPrefix + key

	if val, err := m.backend.Get(ctx, cacheKey); err == nil {
		return string(val), nil
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("cache read failed", "key", key, "error", err)
	}

	cfg, err := m.queries.GetConfig(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading config %q: %w", key, err)
	}

	if err := m.backend.Set(ctx, cacheKey, []byte(cfg.Value), m.ttl); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return cfg.Value, nil
}

// SetConfig writes a config value and invalidates its cache entry.
func (m *Manager) SetConfig(ctx context.Context, key, value string) error {
	now := time.Now()
	if err := m.queries.UpsertConfig(ctx, store.UpsertConfigParams{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("storing config %q: %w", key, err)
	}

	if err := m.backend.Delete(ctx, configKeyPrefix+key); err != nil {
		slog.Warn("cache invalidation failed", "key", key, "error", err)
	}
	return nil
}

// Close releases the cache backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
