// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"regexp"
)

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email format")
)

// local@domain.tld with no whitespace and a single @
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if !emailRe.MatchString(e) {
		return ErrEmailInvalid
	}

	return nil
}
