// Package service contains the account verification and credential lifecycle
package service

import (
	"context"
	"errors"
	"fmt"

	"iskacare/clinic-api/internal/codes"
	"iskacare/clinic-api/internal/model"
	"iskacare/clinic-api/internal/notify"
	"iskacare/clinic-api/internal/store"
	"iskacare/clinic-api/pkg/security"
	"iskacare/clinic-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength  = 16
)

type AuthService struct {
	accounts *store.Accounts
	signup   *codes.Issuer
	reset    *codes.Issuer
	mailer   notify.Mailer
	argon    *security.ArgonHash
	tokens   *security.TokenIssuer
}

type AuthServiceOpts struct {
	Accounts *store.Accounts
	// Signup holds email verification codes, Reset holds password reset codes
	Signup *codes.Issuer
	Reset  *codes.Issuer
	Mailer notify.Mailer
	Argon  *security.ArgonHash
	Tokens *security.TokenIssuer
}

func NewAuthService(o AuthServiceOpts) *AuthService {
	return &AuthService{
		accounts: o.Accounts,
		signup:   o.Signup,
		reset:    o.Reset,
		mailer:   o.Mailer,
		argon:    o.Argon,
		tokens:   o.Tokens,
	}
}

type LoginResult struct {
	Token   string
	Account model.PublicAccount
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     model.Role
	Code     string
}

func signupNS(email string) codes.Namespace {
	return codes.Namespace{Email: email, Flow: codes.FlowEmailVerify}
}

func resetNS(email string) codes.Namespace {
	return codes.Namespace{Email: email, Flow: codes.FlowPasswordReset}
}

// RequestEmailVerification mails a registration code to an address that is
// not registered yet and returns the code TTL in seconds
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) (int, error) {
	email = model.NormalizeEmail(email)

	if err := validators.EmailValidator(email); err != nil {
		return 0, ErrEmailMalformed
	}

	taken, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	if taken {
		return 0, ErrEmailAlreadyRegistered
	}

	c, err := s.signup.Issue(ctx, signupNS(email))
	if err != nil {
		return 0, err
	}

	// The code stays stored when delivery fails, a resend overwrites it
	if err := s.mailer.SendVerificationCode(ctx, email, c.Value, c.TTL); err != nil {
		zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("email", email))
		return 0, ErrVerificationDeliveryFailed
	}

	return c.ExpiresIn(), nil
}

// ResendEmailVerification issues a fresh registration code. The server does
// not enforce the client side countdown.
func (s *AuthService) ResendEmailVerification(ctx context.Context, email string) (int, error) {
	return s.RequestEmailVerification(ctx, email)
}

// ConfirmEmailCode checks a registration code without consuming it
func (s *AuthService) ConfirmEmailCode(ctx context.Context, email, code string) error {
	return codeError(s.signup.Validate(ctx, signupNS(model.NormalizeEmail(email)), code))
}

// CompleteRegistration checks the code once more and creates a verified account
func (s *AuthService) CompleteRegistration(ctx context.Context, in RegisterInput) (*model.PublicAccount, error) {
	email := model.NormalizeEmail(in.Email)
	ns := signupNS(email)

	if err := codeError(s.signup.Validate(ctx, ns, in.Code)); err != nil {
		return nil, err
	}

	if err := validators.UsernameValidator(in.Username); err != nil {
		return nil, ErrUsernameInvalid
	}

	if err := passwordError(validators.PasswordValidator(in.Password)); err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	if !role.Valid() {
		return nil, ErrRoleInvalid
	}

	taken, err := s.accounts.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrEmailAlreadyRegistered
	}

	hash, err := s.argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	id, err := gonanoid.Generate(idCharset, idLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account ID, %w", err)
	}

	acc := &model.Account{
		ID:           id,
		Username:     in.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
	}

	// A concurrent registration may have won the race since the checks above
	err = s.accounts.Create(ctx, acc)
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		return nil, ErrUsernameTaken
	case errors.Is(err, store.ErrDuplicateEmail):
		return nil, ErrEmailAlreadyRegistered
	case err != nil:
		return nil, err
	}

	if err := s.signup.Consume(ctx, ns); err != nil {
		zap.L().Warn("Failed to discard used verification code", zap.Error(err), zap.String("email", email))
	}

	pub := acc.Public()
	return &pub, nil
}

// Login checks a username and password and issues a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	acc, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !acc.IsVerified {
		return nil, ErrNotVerified
	}

	ok, err := s.argon.VerifyPasswd(password, acc.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(acc.ID, string(acc.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:   token,
		Account: acc.Public(),
	}, nil
}

// RequestPasswordReset stores a reset code on the account, mails it and
// returns the code TTL in seconds
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (int, error) {
	email = model.NormalizeEmail(email)

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, err
	}

	if !exists {
		return 0, ErrAccountNotFound
	}

	c, err := s.reset.Issue(ctx, resetNS(email))
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return 0, ErrAccountNotFound
		}

		return 0, err
	}

	if err := s.mailer.SendPasswordResetCode(ctx, email, c.Value, c.TTL); err != nil {
		zap.L().Error("Failed to send password reset email", zap.Error(err), zap.String("email", email))
		return 0, ErrResetDeliveryFailed
	}

	return c.ExpiresIn(), nil
}

// ResendPasswordReset replaces the pending reset code with a new one
func (s *AuthService) ResendPasswordReset(ctx context.Context, email string) (int, error) {
	return s.RequestPasswordReset(ctx, email)
}

// ResetPassword sets a new password if code matches the pending reset code
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = model.NormalizeEmail(email)

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !exists {
		return ErrUserNotFound
	}

	if err := codeError(s.reset.Validate(ctx, resetNS(email), code)); err != nil {
		return err
	}

	if err := passwordError(validators.PasswordValidator(newPassword)); err != nil {
		return err
	}

	hash, err := s.argon.GenerateFromPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	// Also clears the reset code fields
	err = s.accounts.UpdatePassword(ctx, email, hash)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	return nil
}

// Account returns the public fields of the account with the given ID
func (s *AuthService) Account(ctx context.Context, id string) (*model.PublicAccount, error) {
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	pub := acc.Public()
	return &pub, nil
}

// Accounts lists public account fields, newest first
func (s *AuthService) Accounts(ctx context.Context, limit, offset int) ([]model.PublicAccount, error) {
	list, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicAccount, len(list))
	for i := range list {
		out[i] = list[i].Public()
	}

	return out, nil
}

func codeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, codes.ErrCodeNotFound):
		return ErrCodeNotFound
	case errors.Is(err, codes.ErrCodeExpired):
		return ErrCodeExpired
	case errors.Is(err, codes.ErrCodeMismatch):
		return ErrCodeMismatch
	default:
		return err
	}
}

func passwordError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validators.ErrPasswordTooLong):
		return ErrPasswordTooLong
	default:
		return ErrPasswordTooShort
	}
}
