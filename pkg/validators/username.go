package validators

import (
	"errors"
	"strings"
)

const maxUsernameLength = 64

var (
	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameTooLong = errors.New("username is too long")
)

func UsernameValidator(u string) error {
	if strings.TrimSpace(u) == "" {
		return ErrUsernameEmpty
	}

	if len(u) > maxUsernameLength {
		return ErrUsernameTooLong
	}

	return nil
}
