package validators

import "errors"

const (
	minPasswordLength = 6
	maxPasswordLength = 255
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < minPasswordLength {
		return ErrPasswordTooShort
	}

	if len(p) > maxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
