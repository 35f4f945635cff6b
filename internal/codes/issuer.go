// Package codes issues and checks the one-time numeric codes mailed to users
// during registration and password reset
package codes

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultTTL = 600 * time.Second

	codeLength = 6
	digits     = "0123456789"
)

var (
	ErrCodeNotFound = errors.New("no verification code found")
	ErrCodeExpired  = errors.New("verification code expired")
	ErrCodeMismatch = errors.New("invalid verification code")
)

type Flow string

const (
	FlowEmailVerify   Flow = "email_verify"
	FlowPasswordReset Flow = "password_reset"
)

// Namespace identifies a code slot. At most one live code exists per namespace.
type Namespace struct {
	Email string
	Flow  Flow
}

func (n Namespace) Key() string {
	return string(n.Flow) + ":" + n.Email
}

type Code struct {
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// ExpiresIn is the TTL in whole seconds, used for the client countdown
func (c *Code) ExpiresIn() int {
	return int(c.TTL / time.Second)
}

type Issuer struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Issuer)

func WithTTL(d time.Duration) Option {
	return func(i *Issuer) {
		i.ttl = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(s Store, opts ...Option) *Issuer {
	i := &Issuer{
		store: s,
		ttl:   DefaultTTL,
		now:   time.Now,
	}

	for _, o := range opts {
		o(i)
	}

	return i
}

// Issue generates a fresh code for ns and stores it, replacing any previous one
func (i *Issuer) Issue(ctx context.Context, ns Namespace) (*Code, error) {
	v, err := gonanoid.Generate(digits, codeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code, %w", err)
	}

	c := &Code{
		Value:     v,
		ExpiresAt: i.now().Add(i.ttl),
		TTL:       i.ttl,
	}

	err = i.store.Put(ctx, ns, Entry{Code: c.Value, ExpiresAt: c.ExpiresAt})
	if err != nil {
		return nil, fmt.Errorf("failed to store code, %w", err)
	}

	return c, nil
}

// Validate checks candidate against the code stored for ns. A successful check
// leaves the code in place; call Consume once the guarded action is done.
//
// Email verification codes are checked for presence, then expiry (an expired
// entry is discarded), then value. Password reset codes are checked for value
// first, a missing code counting as a mismatch, and only then for expiry.
func (i *Issuer) Validate(ctx context.Context, ns Namespace, candidate string) error {
	e, err := i.store.Get(ctx, ns)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to load code, %w", err)
	}

	if ns.Flow == FlowPasswordReset {
		if e == nil || e.Code != candidate {
			return ErrCodeMismatch
		}

		if e.Expired(i.now()) {
			return ErrCodeExpired
		}

		return nil
	}

	if e == nil {
		return ErrCodeNotFound
	}

	if e.Expired(i.now()) {
		if err := i.store.Delete(ctx, ns); err != nil {
			return fmt.Errorf("failed to discard expired code, %w", err)
		}

		return ErrCodeExpired
	}

	if e.Code != candidate {
		return ErrCodeMismatch
	}

	return nil
}

// Consume removes the code stored for ns
func (i *Issuer) Consume(ctx context.Context, ns Namespace) error {
	if err := i.store.Delete(ctx, ns); err != nil {
		return fmt.Errorf("failed to consume code, %w", err)
	}

	return nil
}
