package codes

import (
	"context"
	"errors"
	"time"

	"iskacare/clinic-api/internal/store"
)

// AccountStore keeps a code on the account record it belongs to. It backs the
// password reset flow, where the account always exists before a code does.
type AccountStore struct {
	accounts *store.Accounts
}

func NewAccountStore(accounts *store.Accounts) *AccountStore {
	return &AccountStore{accounts: accounts}
}

func (a *AccountStore) Put(ctx context.Context, ns Namespace, e Entry) error {
	return a.accounts.SetResetCode(ctx, ns.Email, e.Code, e.ExpiresAt)
}

func (a *AccountStore) Get(ctx context.Context, ns Namespace) (*Entry, error) {
	acc, err := a.accounts.FindByEmail(ctx, ns.Email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	if acc.VerificationCode == nil {
		return nil, ErrNotFound
	}

	var exp time.Time
	if acc.VerificationCodeExpiry != nil {
		exp = *acc.VerificationCodeExpiry
	}

	return &Entry{
		Code:      *acc.VerificationCode,
		ExpiresAt: exp,
	}, nil
}

func (a *AccountStore) Delete(ctx context.Context, ns Namespace) error {
	err := a.accounts.ClearResetCode(ctx, ns.Email)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return err
	}

	return nil
}
