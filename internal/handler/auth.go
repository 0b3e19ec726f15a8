// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/goblog/internal/auth"
	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/service"
	"github.com/olegiv/goblog/internal/store"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, es *service.EventService, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    es,
		loginProtection: lp,
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "register", render.TemplateData{Title: "Register"}); err != nil {
		logAndInternalError(w, "render register form", "error", err)
	}
}

// Register handles the registration form submission.
// The first account ever created becomes the admin; everyone else is a member.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	if name == "" || email == "" || password == "" {
		flashError(w, r, h.renderer, RouteRegister, "Name, email and password are required")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "hashing password", "error", err)
		return
	}

	// First registered user becomes the administrator
	role := store.RoleMember
	count, err := h.queries.CountUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "counting users", "error", err)
		return
	}
	if count == 0 {
		role = store.RoleAdmin
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, redirectLogin, "You've already signed up with that email, log in instead!")
			return
		}
		logAndInternalError(w, "creating user", "error", err)
		return
	}

	// Log the new user in immediately
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelInfo, "User registered", &user.ID,
		map[string]any{"email": user.Email, "role": user.Role})

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// LoginForm renders the login page, redirecting already-authenticated users.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	if err := h.renderer.Render(w, r, "login", render.TemplateData{Title: "Log In"}); err != nil {
		logAndInternalError(w, "render login form", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelWarning,
				"Login attempt on locked account", nil, map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelWarning,
				"Login failed: user not found", nil, map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for unknown emails to prevent enumeration
		if h.recordFailure(w, r, email) {
			return
		}
		flashError(w, r, h.renderer, redirectLogin, "That email does not exist, please try again.")
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		flashError(w, r, h.renderer, redirectLogin, "Password incorrect, please try again.")
		return
	}

	if !valid {
		_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelWarning,
			"Login failed: invalid password", &user.ID, map[string]any{"email": email})
		if h.recordFailure(w, r, email) {
			return
		}
		flashError(w, r, h.renderer, redirectLogin, "Password incorrect, please try again.")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Re-hash if the stored hash uses outdated parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          user.ID,
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelInfo, "User logged in", &user.ID,
		map[string]any{"email": user.Email})

	h.renderer.SetFlash(r, "Welcome back, "+user.Name+"!", "success")
	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// recordFailure records a failed login attempt. Returns true when a
// response was written (account locked or a warning issued).
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string) bool {
	if h.loginProtection == nil {
		return false
	}

	if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
		_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelWarning,
			"Account locked due to failed attempts", nil,
			map[string]any{"email": email, "duration": lockDuration.String()})
		flashError(w, r, h.renderer, redirectLogin,
			fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)))
		return true
	}

	if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 3 {
		flashError(w, r, h.renderer, redirectLogin,
			fmt.Sprintf("Invalid credentials. %d attempts remaining before lockout.", remaining))
		return true
	}

	return false
}

// Logout destroys the session and redirects to the homepage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if userID > 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), r, service.EventLevelInfo, "User logged out", &userID, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
