// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/service"
)

// StaticHandler renders the about and contact pages from embedded
// Markdown content.
type StaticHandler struct {
	renderer     *render.Renderer
	eventService *service.EventService
	markdown     goldmark.Markdown
	pages        map[string]template.HTML
}

// NewStaticHandler creates a StaticHandler, pre-rendering the Markdown
// files found in contentFS.
func NewStaticHandler(renderer *render.Renderer, es *service.EventService, contentFS fs.FS) (*StaticHandler, error) {
	h := &StaticHandler{
		renderer:     renderer,
		eventService: es,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		pages: make(map[string]template.HTML),
	}

	entries, err := fs.ReadDir(contentFS, ".")
	if err != nil {
		return nil, fmt.Errorf("reading content directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		source, err := fs.ReadFile(contentFS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := h.markdown.Convert(source, &buf); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".md")
		h.pages[name] = template.HTML(buf.String())
	}

	return h, nil
}

// About renders the about page.
func (h *StaticHandler) About(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "about", render.TemplateData{
		Title: "About Me",
		Data:  map[string]any{"Content": h.pages["about"]},
	}); err != nil {
		logAndInternalError(w, "render about page", "error", err)
	}
}

// ContactForm renders the contact page.
func (h *StaticHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "contact", render.TemplateData{
		Title: "Contact Me",
		Data:  map[string]any{"Content": h.pages["contact"]},
	}); err != nil {
		logAndInternalError(w, "render contact page", "error", err)
	}
}

// Contact handles the contact form submission. Messages are recorded
// in the event log rather than emailed.
func (h *StaticHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteContact) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("message"))

	if name == "" || email == "" || message == "" {
		flashError(w, r, h.renderer, RouteContact, "All fields are required")
		return
	}

	_ = h.eventService.LogRequestEvent(r.Context(), r, service.EventLevelInfo, service.EventCategorySystem,
		"Contact message received", nil,
		map[string]any{
			"name":    name,
			"email":   email,
			"phone":   strings.TrimSpace(r.FormValue("phone")),
			"message": message,
		})

	flashSuccess(w, r, h.renderer, RouteContact, "Successfully sent your message!")
}
