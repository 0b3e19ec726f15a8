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

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/service"
	"github.com/olegiv/goblog/internal/store"
)

// CommentHandler handles comment creation and deletion.
type CommentHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	textPolicy   *bluemonday.Policy
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService) *CommentHandler {
	return &CommentHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: es,
		textPolicy:   bluemonday.UGCPolicy(),
	}
}

// Add handles a comment submission on a post page.
// Anonymous visitors are sent to the login page.
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		flashError(w, r, h.renderer, redirectLogin, "You need to login or register to comment.")
		return
	}

	if _, err := h.queries.GetPostByID(r.Context(), postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "post not found", http.StatusNotFound)
		} else {
			logAndInternalError(w, "loading post for comment", "error", err, "post_id", postID)
		}
		return
	}

	if !parseFormOrRedirect(w, r, h.renderer, fmt.Sprintf(redirectPostID, postID)) {
		return
	}

	text := h.textPolicy.Sanitize(strings.TrimSpace(r.FormValue("comment")))
	if text == "" {
		flashError(w, r, h.renderer, fmt.Sprintf(redirectPostID, postID), "Comment cannot be empty")
		return
	}

	comment, err := h.queries.CreateComment(r.Context(), store.CreateCommentParams{
		Text:      text,
		AuthorID:  user.ID,
		PostID:    postID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logAndInternalError(w, "creating comment", "error", err, "post_id", postID)
		return
	}

	slog.Info("comment created", "comment_id", comment.ID, "post_id", postID, "user_id", user.ID)
	_ = h.eventService.LogContentEvent(r.Context(), r, service.EventCategoryComment, "Comment created", &user.ID,
		map[string]any{"comment_id": comment.ID, "post_id": postID})

	http.Redirect(w, r, fmt.Sprintf(redirectPostID, postID), http.StatusSeeOther)
}

// Delete removes a comment. Only the comment's author may delete it;
// a missing comment is also treated as forbidden so the response does
// not reveal which comments exist.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseIDParam(w, r, "commentID")
	if !ok {
		return
	}
	postID, ok := parseIDParam(w, r, "postID")
	if !ok {
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	comment, err := h.queries.GetCommentByID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		} else {
			logAndInternalError(w, "loading comment", "error", err, "comment_id", commentID)
		}
		return
	}

	if comment.AuthorID != user.ID {
		slog.Warn("comment delete denied",
			"comment_id", commentID,
			"owner_id", comment.AuthorID,
			"user_id", user.ID,
		)
		http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	if err := h.queries.DeleteComment(r.Context(), commentID); err != nil {
		logAndInternalError(w, "deleting comment", "error", err, "comment_id", commentID)
		return
	}

	slog.Info("comment deleted", "comment_id", commentID, "user_id", user.ID)
	_ = h.eventService.LogContentEvent(r.Context(), r, service.EventCategoryComment, "Comment deleted", &user.ID,
		map[string]any{"comment_id": commentID, "post_id": postID})

	http.Redirect(w, r, fmt.Sprintf(redirectPostID, postID), http.StatusSeeOther)
}
