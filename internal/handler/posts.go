// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/goblog/internal/imaging"
	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/service"
	"github.com/olegiv/goblog/internal/store"
)

// maxUploadSize limits header image uploads to 10 MB.
const maxUploadSize = 10 << 20

// PostHandler handles post management routes. All routes except reads
// are admin-only, enforced by middleware.
type PostHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	processor    *imaging.Processor
	bodyPolicy   *bluemonday.Policy
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(db *sql.DB, renderer *render.Renderer, es *service.EventService, processor *imaging.Processor) *PostHandler {
	return &PostHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: es,
		processor:    processor,
		bodyPolicy:   bluemonday.UGCPolicy(),
	}
}

// postForm holds the validated fields of a post create/edit submission.
type postForm struct {
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// parsePostForm extracts and sanitizes post fields from the request.
// A multipart "image" file upload, when present, overrides the img_url field.
func (h *PostHandler) parsePostForm(r *http.Request) (postForm, error) {
	// Accept both plain and multipart submissions
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return postForm{}, fmt.Errorf("parsing multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return postForm{}, fmt.Errorf("parsing form: %w", err)
	}

	form := postForm{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Subtitle: strings.TrimSpace(r.FormValue("subtitle")),
		Body:     h.bodyPolicy.Sanitize(r.FormValue("body")),
		ImageURL: strings.TrimSpace(r.FormValue("img_url")),
	}

	if form.Title == "" || form.Body == "" {
		return form, fmt.Errorf("title and body are required")
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		result, err := h.processor.ProcessHeaderImage(file, header.Filename)
		if err != nil {
			return form, fmt.Errorf("processing header image: %w", err)
		}
		form.ImageURL = "/uploads/" + result.Filename
	}

	return form, nil
}

// NewForm renders the post creation page.
func (h *PostHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "post_form", render.TemplateData{
		Title: "New Post",
		Data:  map[string]any{"Action": RouteNewPost},
	}); err != nil {
		logAndInternalError(w, "render new post form", "error", err)
	}
}

// Create handles the post creation form submission.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := h.parsePostForm(r)
	if err != nil {
		flashError(w, r, h.renderer, redirectNewPost, err.Error())
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	now := time.Now()
	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		Title:     form.Title,
		Subtitle:  form.Subtitle,
		Body:      form.Body,
		ImageUrl:  form.ImageURL,
		AuthorID:  user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, redirectNewPost, "A post with that title already exists.")
			return
		}
		logAndInternalError(w, "creating post", "error", err)
		return
	}

	slog.Info("post created", "post_id", post.ID, "user_id", user.ID)
	_ = h.eventService.LogContentEvent(r.Context(), r, service.EventCategoryPost, "Post created", &user.ID,
		map[string]any{"post_id": post.ID, "title": post.Title})

	http.Redirect(w, r, fmt.Sprintf(redirectPostID, post.ID), http.StatusSeeOther)
}

// EditForm renders the post editing page.
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
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

	if err := h.renderer.Render(w, r, "post_form", render.TemplateData{
		Title: "Edit Post",
		Data: map[string]any{
			"Action": fmt.Sprintf("/edit-post/%d", post.ID),
			"Post":   post,
		},
	}); err != nil {
		logAndInternalError(w, "render edit post form", "error", err)
	}
}

// Update handles the post editing form submission.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	form, err := h.parsePostForm(r)
	if err != nil {
		flashError(w, r, h.renderer, fmt.Sprintf("/edit-post/%d", id), err.Error())
		return
	}
	if form.ImageURL == "" {
		form.ImageURL = post.ImageUrl
	}

	if err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		Title:     form.Title,
		Subtitle:  form.Subtitle,
		Body:      form.Body,
		ImageUrl:  form.ImageURL,
		UpdatedAt: time.Now(),
		ID:        id,
	}); err != nil {
		if store.IsUniqueViolation(err) {
			flashError(w, r, h.renderer, fmt.Sprintf("/edit-post/%d", id), "A post with that title already exists.")
			return
		}
		logAndInternalError(w, "updating post", "error", err, "post_id", id)
		return
	}

	userID := middleware.GetUserIDPtr(r)
	_ = h.eventService.LogContentEvent(r.Context(), r, service.EventCategoryPost, "Post updated", userID,
		map[string]any{"post_id": id})

	http.Redirect(w, r, fmt.Sprintf(redirectPostID, id), http.StatusSeeOther)
}

// Delete removes a post. Comments are removed by the database cascade.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.queries.DeletePost(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting post", "error", err, "post_id", id)
		return
	}

	// Remove the stored header image if the post used an uploaded one
	if strings.HasPrefix(post.ImageUrl, "/uploads/") {
		if err := h.processor.Delete(strings.TrimPrefix(post.ImageUrl, "/uploads/")); err != nil {
			slog.Warn("failed to delete post image", "error", err, "post_id", id)
		}
	}

	userID := middleware.GetUserIDPtr(r)
	slog.Info("post deleted", "post_id", id)
	_ = h.eventService.LogContentEvent(r.Context(), r, service.EventCategoryPost, "Post deleted", userID,
		map[string]any{"post_id": id, "title": post.Title})

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}
