// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/goblog/internal/store"
)

// eventRetention is how long audit events are kept before pruning.
const eventRetention = 90 * 24 * time.Hour

// Scheduler handles periodic maintenance: event log pruning and
// expired session cleanup.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the maintenance jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Prune old events nightly
	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune events", "error", err)
		}
	}); err != nil {
		return err
	}

	// Sweep expired sessions hourly
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.sweepSessions(); err != nil {
			s.logger.Error("failed to sweep sessions", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneEvents deletes audit events older than the retention window.
func (s *Scheduler) pruneEvents() error {
	queries := store.New(s.db)
	cutoff := time.Now().Add(-eventRetention)

	deleted, err := queries.DeleteEventsBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("pruned old events", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}

// sweepSessions removes expired rows from the sessions table. The
// session store cleans up lazily; this keeps the table small between
// visits.
func (s *Scheduler) sweepSessions() error {
	// Expiry is stored as a julian day number by the session store
	result, err := s.db.ExecContext(context.Background(),
		"DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		return err
	}

	if deleted, err := result.RowsAffected(); err == nil && deleted > 0 {
		s.logger.Info("swept expired sessions", "deleted", deleted)
	}
	return nil
}
