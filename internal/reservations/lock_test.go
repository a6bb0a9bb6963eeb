package reservations

import (
	"testing"
	"time"
)

func TestNewPropertyLock(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	ttl := 10 * time.Second

	lock := newPropertyLock("prop-1", now, ttl)

	if lock.ID != "property_lock_prop-1" {
		t.Errorf("expected deterministic lock id, got %q", lock.ID)
	}
	if !lock.CreatedAt.Equal(now) {
		t.Errorf("expected CreatedAt from the injected clock, got %v", lock.CreatedAt)
	}
	if !lock.ExpiresAt.Equal(now.Add(ttl)) {
		t.Errorf("expected expiry %v, got %v", now.Add(ttl), lock.ExpiresAt)
	}
}
