package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/goblog/internal/store"
)

func requestWithUser(user store.User) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	ctx := context.WithValue(r.Context(), ContextKeyUser, user)
	return r.WithContext(ctx)
}

func TestGetUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if GetUser(r) != nil {
		t.Error("GetUser on bare request should be nil")
	}

	r = requestWithUser(store.User{ID: 7, Email: "a@example.com", Role: store.RoleAdmin})
	user := GetUser(r)
	if user == nil {
		t.Fatal("GetUser returned nil")
	}
	if user.ID != 7 {
		t.Errorf("user.ID = %d, want 7", user.ID)
	}
	if GetUserID(r) != 7 {
		t.Errorf("GetUserID = %d, want 7", GetUserID(r))
	}
	if ptr := GetUserIDPtr(r); ptr == nil || *ptr != 7 {
		t.Errorf("GetUserIDPtr = %v, want &7", ptr)
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin()(next)

	t.Run("anonymous redirected to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/new-post", nil))
		if w.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
		}
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q, want /login", loc)
		}
	})

	t.Run("member forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithUser(store.User{ID: 2, Role: store.RoleMember}))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithUser(store.User{ID: 1, Role: store.RoleAdmin}))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestLoginProtection_AccountLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "victim@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("account should not start locked")
	}

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if remaining := lp.GetRemainingAttempts(email); remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("third failure should lock the account")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want 1m", duration)
	}

	if locked, _ := lp.IsAccountLocked(email); !locked {
		t.Error("account should be locked")
	}
}

func TestLoginProtection_SuccessClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(DefaultLoginProtectionConfig())

	email := "user@example.com"
	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if remaining := lp.GetRemainingAttempts(email); remaining != 5 {
		t.Errorf("remaining = %d, want 5 after successful login", remaining)
	}
}

func TestLoginProtection_IPRateLimit(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001, // effectively no refill during the test
		IPBurst:     2,
	})

	ip := "203.0.113.1"
	if !lp.CheckIPRateLimit(ip) {
		t.Fatal("first request should pass")
	}
	if !lp.CheckIPRateLimit(ip) {
		t.Fatal("second request should pass")
	}
	if lp.CheckIPRateLimit(ip) {
		t.Error("burst exhausted, third request should be denied")
	}

	// Other IPs are unaffected
	if !lp.CheckIPRateLimit("203.0.113.2") {
		t.Error("different IP should have its own limiter")
	}
}

func TestLoginProtection_Middleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})
	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// GET requests bypass rate limiting
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET should not be rate limited, got %d", w.Code)
		}
	}

	post := func() int {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = "198.51.100.9:1234"
		handler.ServeHTTP(w, r)
		return w.Code
	}

	if code := post(); code != http.StatusOK {
		t.Fatalf("first POST status = %d, want 200", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want 429", code)
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	if got := getClientIP(r); got != "192.0.2.1:5555" {
		t.Errorf("getClientIP = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.50")
	if got := getClientIP(r); got != "203.0.113.50" {
		t.Errorf("getClientIP with X-Forwarded-For = %q", got)
	}

	r.Header.Set("X-Real-IP", "198.51.100.3")
	if got := getClientIP(r); got != "198.51.100.3" {
		t.Errorf("getClientIP with X-Real-IP = %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Strict-Transport-Security"); got == "" {
		t.Error("HSTS header missing in production config")
	}
	if got := w.Header().Get("Content-Security-Policy"); got == "" {
		t.Error("CSP header missing")
	}
}

func TestSecurityHeaders_DevNoHSTS(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(true)
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS should be absent in development, got %q", got)
	}
}
