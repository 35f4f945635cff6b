package codes

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store when nothing is stored for a namespace
var ErrNotFound = errors.New("code entry not found")

type Entry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer usable at now
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store keeps at most one entry per namespace. Put overwrites.
type Store interface {
	Put(ctx context.Context, ns Namespace, e Entry) error
	Get(ctx context.Context, ns Namespace) (*Entry, error)
	Delete(ctx context.Context, ns Namespace) error
}
