// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic shared by handlers,
// including event logging for the audit trail.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/goblog/internal/geoip"
	"github.com/olegiv/goblog/internal/store"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories.
const (
	EventCategoryAuth    = "auth"
	EventCategoryPost    = "post"
	EventCategoryComment = "comment"
	EventCategoryUser    = "user"
	EventCategorySystem  = "system"
)

// EventService records application events in the events table.
type EventService struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewEventService creates a new EventService. The geo lookup is optional;
// pass nil to skip country enrichment.
func NewEventService(db *sql.DB, geo *geoip.Lookup) *EventService {
	return &EventService{
		queries: store.New(db),
		geo:     geo,
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IpAddress: ipAddress,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("failed to log event", "category", category, "error", err)
		return err
	}
	return nil
}

// LogRequestEvent logs an event enriched with request context: client IP,
// parsed user agent, and country when GeoIP is available.
func (s *EventService) LogRequestEvent(ctx context.Context, r *http.Request, level, category, message string, userID *int64, metadata map[string]any) error {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	if uaString := r.UserAgent(); uaString != "" {
		ua := useragent.Parse(uaString)
		metadata["browser"] = ua.Name
		metadata["os"] = ua.OS
		if ua.Mobile {
			metadata["device"] = "mobile"
		}
	}

	ip := r.RemoteAddr
	if s.geo != nil {
		if country := s.geo.Country(ip); country != "" {
			metadata["country"] = country
		}
	}

	return s.LogEvent(ctx, level, category, message, userID, ip, metadata)
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelInfo, category, message, userID, ipAddress, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelWarning, category, message, userID, ipAddress, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelError, category, message, userID, ipAddress, metadata)
}

// LogAuthEvent logs an authentication-related event with request context.
func (s *EventService) LogAuthEvent(ctx context.Context, r *http.Request, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogRequestEvent(ctx, r, level, EventCategoryAuth, message, userID, metadata)
}

// LogContentEvent logs a post or comment event with request context.
func (s *EventService) LogContentEvent(ctx context.Context, r *http.Request, category, message string, userID *int64, metadata map[string]any) error {
	return s.LogRequestEvent(ctx, r, EventLevelInfo, category, message, userID, metadata)
}

// DeleteOldEvents removes events older than the given duration and
// returns how many were deleted.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}
