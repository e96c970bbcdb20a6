package services

import (
	"unicode"
)

// Password requirements
const (
	MinPasswordLength = 8
	// MaxPasswordLength is the bcrypt input limit in bytes
	MaxPasswordLength = 72
)

// ValidatePassword checks the password against the account policy:
// at least 8 characters, at most 72 bytes, with a letter and a number
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Validation("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return Validation("password cannot exceed %d bytes", MaxPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter {
		return Validation("password must contain at least one letter")
	}
	if !hasNumber {
		return Validation("password must contain at least one number")
	}
	return nil
}
