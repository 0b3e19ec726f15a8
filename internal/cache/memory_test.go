package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry should miss, got err = %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("v"), 0)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("deleted entry should miss, got err = %v", err)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("cleared entry should miss")
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	_ = c.Close()

	if _, err := c.Get(context.Background(), "key"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("err = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(context.Background(), "key", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("err = %v, want ErrCacheClosed", err)
	}

	// Close is idempotent
	if err := c.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("abc"), 0)
	got, _ := c.Get(ctx, "key")
	got[0] = 'x'

	again, _ := c.Get(ctx, "key")
	if string(again) != "abc" {
		t.Errorf("cached value mutated: %q", again)
	}
}
