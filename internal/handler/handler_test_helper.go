package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/olegiv/goblog/internal/auth"
	"github.com/olegiv/goblog/internal/middleware"
	"github.com/olegiv/goblog/internal/render"
	"github.com/olegiv/goblog/internal/service"
	"github.com/olegiv/goblog/internal/store"
)

// testDB creates an in-memory SQLite database with the required schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'member',
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login_at DATETIME
		);
		CREATE INDEX idx_users_email ON users(email);

		CREATE TABLE posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			subtitle TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			author_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (author_id) REFERENCES users(id)
		);
		CREATE INDEX idx_posts_author_id ON posts(author_id);

		CREATE TABLE comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			author_id INTEGER NOT NULL,
			post_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (author_id) REFERENCES users(id),
			FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
		);
		CREATE INDEX idx_comments_post_id ON comments(post_id);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);

		CREATE TABLE events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL DEFAULT 'info',
			category TEXT NOT NULL DEFAULT 'system',
			message TEXT NOT NULL,
			user_id INTEGER,
			ip_address TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
		);

		CREATE TABLE config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			value TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		INSERT INTO config (key, value) VALUES ('site_name', 'Test Blog');
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer builds a renderer over a minimal template set.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()

	templates := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}{{if .Flash}}[{{.FlashType}}] {{.Flash}}{{end}}{{template "content" .}}{{end}}`),
		},
		"pages/index.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{range .Data.Posts}}<h2>{{.Title}}</h2>{{end}}{{end}}`),
		},
		"pages/post.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}<h1>{{.Data.Post.Title}}</h1>{{range .Data.Comments}}<p>{{.Text}}</p>{{end}}{{end}}`),
		},
		"pages/login.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}login{{end}}`),
		},
		"pages/register.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}register{{end}}`),
		},
		"pages/post_form.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}form{{end}}`),
		},
		"pages/about.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{.Data.Content}}{{end}}`),
		},
		"pages/contact.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{.Data.Content}}{{end}}`),
		},
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templates,
		SessionManager: sm,
	})
	if err != nil {
		t.Fatalf("failed to create test renderer: %v", err)
	}
	return renderer
}

// testEventService creates an EventService without GeoIP.
func testEventService(db *sql.DB) *service.EventService {
	return service.NewEventService(db, nil)
}

// createTestUser creates a user with a real password hash.
func createTestUser(t *testing.T, db *sql.DB, role, password string) store.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	queries := store.New(db)
	now := time.Now()
	user, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Name:         "Test User",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestPost creates a post owned by the given user.
func createTestPost(t *testing.T, db *sql.DB, authorID int64, title string) store.Post {
	t.Helper()

	now := time.Now()
	post, err := store.New(db).CreatePost(context.Background(), store.CreatePostParams{
		Title:     title,
		Subtitle:  "A subtitle",
		Body:      "<p>Body text</p>",
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser places a user into the request context the way the
// LoadUser middleware would.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
	return r.WithContext(ctx)
}

// requestWithSession wraps a request with a fresh session context.
func requestWithSession(t *testing.T, sm *scs.SessionManager, r *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return r.WithContext(ctx)
}

// assertStatus checks that the response status code matches.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
