// Package store persists accounts and enforces their uniqueness constraints
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"iskacare/clinic-api/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already registered")
)

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// Create inserts a new account. If a unique index rejects the row the error is
// ErrDuplicateUsername or ErrDuplicateEmail, whichever key collided.
func (a *Accounts) Create(ctx context.Context, acc *model.Account) error {
	acc.Email = model.NormalizeEmail(acc.Email)

	err := a.db.WithContext(ctx).Create(acc).Error
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return a.duplicateCause(ctx, acc)
	}

	return fmt.Errorf("failed to create account, %w", err)
}

func (a *Accounts) duplicateCause(ctx context.Context, acc *model.Account) error {
	taken, err := a.ExistsByUsername(ctx, acc.Username)
	if err != nil {
		return err
	}

	if taken {
		return ErrDuplicateUsername
	}

	return ErrDuplicateEmail
}

func (a *Accounts) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return a.findOne(ctx, "id = ?", id)
}

func (a *Accounts) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return a.findOne(ctx, "username = ?", username)
}

func (a *Accounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return a.findOne(ctx, "email = ?", model.NormalizeEmail(email))
}

func (a *Accounts) findOne(ctx context.Context, query string, arg any) (*model.Account, error) {
	var acc model.Account

	err := a.db.WithContext(ctx).Where(query, arg).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, fmt.Errorf("failed to query account, %w", err)
	}

	return &acc, nil
}

func (a *Accounts) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.exists(ctx, "username = ?", username)
}

func (a *Accounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.exists(ctx, "email = ?", model.NormalizeEmail(email))
}

func (a *Accounts) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64

	err := a.db.WithContext(ctx).
		Model(model.Account{}).
		Where(query, arg).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check if account exists, %w", err)
	}

	return count > 0, nil
}

// SetResetCode stores a pending password reset code on the account,
// replacing any previous one
func (a *Accounts) SetResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	return a.update(ctx, email, map[string]any{
		"verification_code":        code,
		"verification_code_expiry": expiresAt,
	})
}

func (a *Accounts) ClearResetCode(ctx context.Context, email string) error {
	return a.update(ctx, email, map[string]any{
		"verification_code":        nil,
		"verification_code_expiry": nil,
	})
}

// UpdatePassword replaces the password hash and drops any pending reset code
func (a *Accounts) UpdatePassword(ctx context.Context, email, hash string) error {
	return a.update(ctx, email, map[string]any{
		"password_hash":            hash,
		"verification_code":        nil,
		"verification_code_expiry": nil,
	})
}

func (a *Accounts) update(ctx context.Context, email string, fields map[string]any) error {
	r := a.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("email = ?", model.NormalizeEmail(email)).
		Updates(fields)
	if r.Error != nil {
		return fmt.Errorf("failed to update account, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// ClearExpiredResetCodes drops reset codes that expired before the given time
// and returns how many accounts were touched
func (a *Accounts) ClearExpiredResetCodes(ctx context.Context, before time.Time) (int64, error) {
	r := a.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("verification_code_expiry < ?", before).
		Updates(map[string]any{
			"verification_code":        nil,
			"verification_code_expiry": nil,
		})
	if r.Error != nil {
		return 0, fmt.Errorf("failed to clear expired reset codes, %w", r.Error)
	}

	return r.RowsAffected, nil
}

// List returns accounts ordered by creation time, newest first
func (a *Accounts) List(ctx context.Context, limit, offset int) ([]model.Account, error) {
	var accounts []model.Account

	err := a.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&accounts).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts, %w", err)
	}

	return accounts, nil
}
