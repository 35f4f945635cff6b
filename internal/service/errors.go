package service

import "errors"

// Kind groups service errors by how a caller should react to them
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindCodeNotFound
	KindCodeExpired
	KindCodeMismatch
	KindDeliveryFailed
	KindUnauthenticated
)

// Error is a failure the client can act on. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrEmailMalformed   = &Error{KindValidation, "Invalid email format"}
	ErrPasswordTooShort = &Error{KindValidation, "Password must be at least 6 characters long"}
	ErrPasswordTooLong  = &Error{KindValidation, "Password is too long"}
	ErrUsernameInvalid  = &Error{KindValidation, "Username is required and must be at most 64 characters"}
	ErrRoleInvalid      = &Error{KindValidation, "Role must be either user or staff"}

	ErrEmailAlreadyRegistered = &Error{KindConflict, "Email already registered"}
	ErrUsernameTaken          = &Error{KindConflict, "Username already exists"}

	// Forgot password names the email, the other lookups don't
	ErrAccountNotFound = &Error{KindNotFound, "User not found with this email"}
	ErrUserNotFound    = &Error{KindNotFound, "User not found"}

	ErrCodeNotFound = &Error{KindCodeNotFound, "No verification code found. Please request a new code."}
	ErrCodeExpired  = &Error{KindCodeExpired, "Verification code expired. Please request a new code."}
	ErrCodeMismatch = &Error{KindCodeMismatch, "Invalid verification code"}

	ErrVerificationDeliveryFailed = &Error{KindDeliveryFailed, "Failed to send verification email. Please try again."}
	ErrResetDeliveryFailed        = &Error{KindDeliveryFailed, "Failed to send password reset email. Please try again."}

	// Unknown usernames and wrong passwords share one message, unverified
	// accounts get their own
	ErrInvalidCredentials = &Error{KindUnauthenticated, "Invalid credentials"}
	ErrNotVerified        = &Error{KindUnauthenticated, "Please verify your email before logging in"}
)

// KindOf returns the Kind of err, or KindInternal for anything that is not a
// service error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}
