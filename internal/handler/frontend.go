// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/store"
)

// FrontendHandler handles the public blog pages.
type FrontendHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Home renders the homepage with all posts in creation order.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.queries.ListPosts(r.Context())
	if err != nil {
		logAndInternalError(w, "listing posts", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "index", render.TemplateData{
		Title: middleware.GetSiteName(r),
		Data:  map[string]any{"Posts": posts},
	}); err != nil {
		logAndInternalError(w, "render homepage", "error", err)
	}
}

// commentView is a comment prepared for display, with author info and
// a Gravatar avatar URL.
type commentView struct {
	ID         int64
	Text       string
	AuthorID   int64
	AuthorName string
	AvatarURL  string
	CreatedAt  time.Time
}

// ShowPost renders a single post with its comments.
func (h *FrontendHandler) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.GetPostByIDRow, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	rows, err := h.queries.ListCommentsByPost(r.Context(), id)
	if err != nil {
		logAndInternalError(w, "listing comments", "error", err, "post_id", id)
		return
	}

	comments := make([]commentView, 0, len(rows))
	for _, c := range rows {
		comments = append(comments, commentView{
			ID:         c.ID,
			Text:       c.Text,
			AuthorID:   c.AuthorID,
			AuthorName: c.AuthorName,
			AvatarURL:  render.GravatarURL(c.AuthorEmail, 100),
			CreatedAt:  c.CreatedAt,
		})
	}

	if err := h.renderer.Render(w, r, "post", render.TemplateData{
		Title: post.Title,
		Data: map[string]any{
			"Post":     post,
			"Comments": comments,
		},
	}); err != nil {
		logAndInternalError(w, "render post", "error", err, "post_id", id)
	}
}

// Health responds with a JSON health status.
func (h *FrontendHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
