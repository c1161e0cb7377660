package models

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254

	// ReservedUsername is claimed by the /users/me endpoint.
	ReservedUsername = "me"
)

// Word characters in any script plus the handful of allowed punctuation.
// \w would be ASCII-only here.
var usernamePattern = regexp.MustCompile(`^[\pL\pN_.@+-]+$`)

var (
	ErrUsernameReserved = errors.New("username 'me' is reserved")
	ErrUsernameInvalid  = errors.New("username contains invalid characters")
	ErrEmailInvalid     = errors.New("email is not a valid address")
)

// ValidateUsername enforces the username length bound, character set and
// the reserved-word rule.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username must not be empty")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if username == ReservedUsername {
		return ErrUsernameReserved
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidateEmail enforces the email length bound and format.
func ValidateEmail(address string) error {
	if address == "" {
		return errors.New("email must not be empty")
	}
	if utf8.RuneCountInString(address) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateYear rejects release years later than the current calendar year.
func ValidateYear(year int, now time.Time) error {
	if year > now.Year() {
		return fmt.Errorf("year %d must not be later than the current year %d", year, now.Year())
	}
	return nil
}
