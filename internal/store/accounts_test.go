package store

import (
	"context"
	"testing"
	"time"

	"iskacare/clinic-api/db"
	"iskacare/clinic-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccounts(t *testing.T) *Accounts {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	return NewAccounts(conn)
}

func account(id, username, email string) *model.Account {
	return &model.Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		IsVerified:   true,
	}
}

func TestCreateNormalizesEmail(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "  Alice@X.com ")))

	acc, err := a.FindByEmail(ctx, "ALICE@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", acc.Email)
	assert.Equal(t, "alice", acc.Username)
	assert.True(t, acc.IsVerified)
}

func TestCreateDuplicateUsername(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))

	err := a.Create(ctx, account("2", "alice", "other@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestCreateDuplicateEmail(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))

	err := a.Create(ctx, account("2", "bob", "ALICE@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFindMissing(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	_, err := a.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = a.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = a.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestExists(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))

	ok, err := a.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.ExistsByEmail(ctx, "Alice@X.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetCodeLifecycle(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))

	exp := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, a.SetResetCode(ctx, "alice@x.com", "012345", exp))

	acc, err := a.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, acc.VerificationCode)
	require.NotNil(t, acc.VerificationCodeExpiry)
	assert.Equal(t, "012345", *acc.VerificationCode)
	assert.True(t, exp.Equal(*acc.VerificationCodeExpiry))

	require.NoError(t, a.UpdatePassword(ctx, "alice@x.com", "new-hash"))

	acc, err = a.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", acc.PasswordHash)
	assert.Nil(t, acc.VerificationCode)
	assert.Nil(t, acc.VerificationCodeExpiry)
}

func TestUpdateMissingAccount(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	err := a.SetResetCode(ctx, "nouser@x.com", "123456", time.Now())
	assert.ErrorIs(t, err, ErrAccountNotFound)

	err = a.UpdatePassword(ctx, "nouser@x.com", "hash")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestList(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))
	require.NoError(t, a.Create(ctx, account("2", "bob", "bob@x.com")))

	all, err := a.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := a.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestClearExpiredResetCodes(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, a.Create(ctx, account("1", "alice", "alice@x.com")))
	require.NoError(t, a.Create(ctx, account("2", "bob", "bob@x.com")))
	require.NoError(t, a.Create(ctx, account("3", "carol", "carol@x.com")))

	require.NoError(t, a.SetResetCode(ctx, "alice@x.com", "111111", now.Add(-2*time.Hour)))
	require.NoError(t, a.SetResetCode(ctx, "bob@x.com", "222222", now.Add(time.Hour)))

	n, err := a.ClearExpiredResetCodes(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	alice, err := a.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Nil(t, alice.VerificationCode)

	bob, err := a.FindByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	require.NotNil(t, bob.VerificationCode)
	assert.Equal(t, "222222", *bob.VerificationCode)
}
