package service

import (
	"regexp"
	"unicode/utf8"

	"board/internal/errors"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// UsernameValidator validates usernames chosen by members.
type UsernameValidator struct{}

// NewUsernameValidator creates a new username validator.
func NewUsernameValidator() *UsernameValidator {
	return &UsernameValidator{}
}

// Validate checks length and character set.
func (v *UsernameValidator) Validate(username string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return errors.Validation("username must be between 3 and 20 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return errors.Validation("username can only contain letters, numbers, underscores, and dashes")
	}
	return nil
}
