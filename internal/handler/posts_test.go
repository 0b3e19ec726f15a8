package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/goblog/internal/imaging"
	"github.com/olegiv/goblog/internal/store"
)

func newPostHandler(t *testing.T) (*PostHandler, *sql.DB, *scs.SessionManager) {
	t.Helper()
	db := testDB(t)
	sm := testSessionManager(t)
	renderer := testRenderer(t, sm)
	processor := imaging.NewProcessor(t.TempDir())
	h := NewPostHandler(db, renderer, testEventService(db), processor)
	return h, db, sm
}

func TestPostCreate(t *testing.T) {
	h, db, sm := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/new-post", strings.NewReader(url.Values{
		"title":    {"Hello World"},
		"subtitle": {"First post"},
		"body":     {`<p>Welcome</p><script>alert("xss")</script>`},
		"img_url":  {"https://example.com/header.jpg"},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(r, admin)
	r = requestWithSession(t, sm, r)

	h.Create(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); !strings.HasPrefix(loc, "/post/") {
		t.Errorf("Location = %q, want /post/{id}", loc)
	}

	posts, err := store.New(db).ListPosts(context.Background())
	if err != nil {
		t.Fatalf("listing posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Title != "Hello World" {
		t.Errorf("title = %q", posts[0].Title)
	}
	if strings.Contains(posts[0].Body, "<script>") {
		t.Errorf("body not sanitized: %q", posts[0].Body)
	}
	if !strings.Contains(posts[0].Body, "<p>Welcome</p>") {
		t.Errorf("allowed markup stripped: %q", posts[0].Body)
	}
	if posts[0].AuthorID != admin.ID {
		t.Errorf("author_id = %d, want %d", posts[0].AuthorID, admin.ID)
	}
}

func TestPostCreate_DuplicateTitle(t *testing.T) {
	h, db, sm := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	createTestPost(t, db, admin.ID, "Taken Title")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/new-post", strings.NewReader(url.Values{
		"title": {"Taken Title"},
		"body":  {"<p>Another body</p>"},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(r, admin)
	r = requestWithSession(t, sm, r)

	h.Create(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/new-post" {
		t.Errorf("Location = %q, want /new-post", loc)
	}
}

func TestPostUpdate(t *testing.T) {
	h, db, sm := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	post := createTestPost(t, db, admin.ID, "Original Title")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/edit-post/1", strings.NewReader(url.Values{
		"title":    {"Updated Title"},
		"subtitle": {"Updated subtitle"},
		"body":     {"<p>Updated body</p>"},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(r, admin)
	r = requestWithSession(t, sm, r)
	r = requestWithURLParams(r, map[string]string{"id": "1"})

	h.Update(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)

	updated, err := store.New(db).GetPostByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("loading updated post: %v", err)
	}
	if updated.Title != "Updated Title" {
		t.Errorf("title = %q", updated.Title)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	h, db, _ := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/edit-post/999", nil)
	r = requestWithUser(r, admin)
	r = requestWithURLParams(r, map[string]string{"id": "999"})

	h.Update(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestPostDelete_CascadesComments(t *testing.T) {
	h, db, sm := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	post := createTestPost(t, db, admin.ID, "Doomed Post")

	queries := store.New(db)
	if _, err := queries.CreateComment(context.Background(), store.CreateCommentParams{
		Text:     "A comment",
		AuthorID: admin.ID,
		PostID:   post.ID,
	}); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/delete/1", nil)
	r = requestWithUser(r, admin)
	r = requestWithSession(t, sm, r)
	r = requestWithURLParams(r, map[string]string{"id": "1"})

	h.Delete(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	if _, err := queries.GetPostByID(context.Background(), post.ID); err == nil {
		t.Error("post still exists after delete")
	}
	count, err := queries.CountCommentsByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("counting comments: %v", err)
	}
	if count != 0 {
		t.Errorf("comments remaining = %d, want 0 (cascade)", count)
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	h, db, _ := newPostHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/delete/42", nil)
	r = requestWithUser(r, admin)
	r = requestWithURLParams(r, map[string]string{"id": "42"})

	h.Delete(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}
