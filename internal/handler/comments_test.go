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

	"github.com/olegiv/goblog/internal/store"
)

func newCommentHandler(t *testing.T) (*CommentHandler, *sql.DB, *scs.SessionManager) {
	t.Helper()
	db := testDB(t)
	sm := testSessionManager(t)
	renderer := testRenderer(t, sm)
	h := NewCommentHandler(db, renderer, testEventService(db))
	return h, db, sm
}

func TestCommentAdd_RequiresLogin(t *testing.T) {
	h, db, sm := newCommentHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	createTestPost(t, db, admin.ID, "A Post")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/post/1", strings.NewReader(url.Values{
		"comment": {"hello"},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithSession(t, sm, r)
	r = requestWithURLParams(r, map[string]string{"id": "1"})

	h.Add(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestCommentAdd_PostNotFound(t *testing.T) {
	h, db, _ := newCommentHandler(t)
	user := createTestUser(t, db, store.RoleMember, "pw-123456")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/post/999", strings.NewReader(url.Values{
		"comment": {"hello"},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(r, user)
	r = requestWithURLParams(r, map[string]string{"id": "999"})

	h.Add(w, r)

	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestCommentAdd(t *testing.T) {
	h, db, sm := newCommentHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	member := createTestUser(t, db, store.RoleMember, "pw-123456")
	post := createTestPost(t, db, admin.ID, "A Post")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/post/1", strings.NewReader(url.Values{
		"comment": {`Nice post!<script>alert("xss")</script>`},
	}.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = requestWithUser(r, member)
	r = requestWithSession(t, sm, r)
	r = requestWithURLParams(r, map[string]string{"id": "1"})

	h.Add(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/post/1" {
		t.Errorf("Location = %q, want /post/1", loc)
	}

	comments, err := store.New(db).ListCommentsByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("listing comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	if comments[0].AuthorID != member.ID {
		t.Errorf("author_id = %d, want %d", comments[0].AuthorID, member.ID)
	}
	if strings.Contains(comments[0].Text, "<script>") {
		t.Errorf("comment not sanitized: %q", comments[0].Text)
	}
}

func TestCommentDelete_Owner(t *testing.T) {
	h, db, sm := newCommentHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	member := createTestUser(t, db, store.RoleMember, "pw-123456")
	post := createTestPost(t, db, admin.ID, "A Post")

	queries := store.New(db)
	comment, err := queries.CreateComment(context.Background(), store.CreateCommentParams{
		Text:     "mine",
		AuthorID: member.ID,
		PostID:   post.ID,
	})
	if err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/delete/comment/1/1", nil)
	r = requestWithUser(r, member)
	r = requestWithSession(t, sm, r)
	r = requestWithURLParams(r, map[string]string{"commentID": "1", "postID": "1"})

	h.Delete(w, r)

	assertStatus(t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != "/post/1" {
		t.Errorf("Location = %q, want /post/1", loc)
	}

	if _, err := queries.GetCommentByID(context.Background(), comment.ID); err == nil {
		t.Error("comment still exists after delete")
	}
}

func TestCommentDelete_NonOwnerForbidden(t *testing.T) {
	h, db, _ := newCommentHandler(t)
	admin := createTestUser(t, db, store.RoleAdmin, "pw-123456")
	owner := createTestUser(t, db, store.RoleMember, "pw-123456")
	intruder := createTestUser(t, db, store.RoleMember, "pw-123456")
	post := createTestPost(t, db, admin.ID, "A Post")

	queries := store.New(db)
	if _, err := queries.CreateComment(context.Background(), store.CreateCommentParams{
		Text:     "owner's comment",
		AuthorID: owner.ID,
		PostID:   post.ID,
	}); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/delete/comment/1/1", nil)
	r = requestWithUser(r, intruder)
	r = requestWithURLParams(r, map[string]string{"commentID": "1", "postID": "1"})

	h.Delete(w, r)

	assertStatus(t, w.Code, http.StatusForbidden)

	// Comment untouched
	if _, err := queries.GetCommentByID(context.Background(), 1); err != nil {
		t.Errorf("comment should survive: %v", err)
	}
}

func TestCommentDelete_MissingCommentForbidden(t *testing.T) {
	h, db, _ := newCommentHandler(t)
	member := createTestUser(t, db, store.RoleMember, "pw-123456")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/delete/comment/999/1", nil)
	r = requestWithUser(r, member)
	r = requestWithURLParams(r, map[string]string{"commentID": "999", "postID": "1"})

	h.Delete(w, r)

	// A nonexistent comment is indistinguishable from someone else's
	assertStatus(t, w.Code, http.StatusForbidden)
}
