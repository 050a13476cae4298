package cache

import (
	"context"
	"testing"
	"time"
)

func TestStore_GetSetAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.April, 1, 18, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	body := []byte(`{"people":[]}`)
	if err := store.Set(ctx, "/people/1", body); err != nil {
		t.Fatalf("set: %v", err)
	}
	body[0] = 'X'

	got, ok, err := store.Get(ctx, "/people/1")
	if err != nil || !ok {
		t.Fatalf("expected cache hit, ok=%v err=%v", ok, err)
	}
	if string(got) != `{"people":[]}` {
		t.Fatalf("stored value must not alias caller buffer, got %q", got)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "/people/1"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	_ = store.Set(ctx, "/people/1", []byte("a"))
	_ = store.Set(ctx, "/people/2", []byte("b"))
	_ = store.Set(ctx, "/schedule", []byte("c"))

	store.DeletePrefix(ctx, "/people/")
	if store.Len() != 1 {
		t.Fatalf("unexpected entry count: got=%d want=1", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "/schedule"); !ok {
		t.Fatalf("expected /schedule to survive prefix delete")
	}
}
