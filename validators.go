package authlib

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MaxEmailLength is the RFC 5321 path limit we enforce on stored emails
const MaxEmailLength = 254

const (
	// MinPasswordLength is the shortest password we accept
	MinPasswordLength = 8
	// MaxPasswordLength caps input so hashing cost stays bounded
	MaxPasswordLength = 128
)

var (
	// emailPattern requires local@domain.tld with a dotted domain and a
	// TLD of at least two letters. Syntactic only, no deliverability check.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)

	passwordUppercase = regexp.MustCompile(`[A-Z]`)
	passwordLowercase = regexp.MustCompile(`[a-z]`)
	passwordDigit     = regexp.MustCompile(`[0-9]`)
	passwordSpecial   = regexp.MustCompile(`[!@#$%^&*()_+=\-\[\]{};':"\\|,.<>/?]`)
)

// ValidateEmail checks email format: non-empty, at most MaxEmailLength
// characters, and shaped like local@domain.tld.
func ValidateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required.Error("email must not be empty"),
		validation.RuneLength(0, MaxEmailLength).Error("email must not exceed 254 characters"),
		validation.Match(emailPattern).Error("invalid email format"),
	)
	if err != nil {
		return wrapValidation(err, "email validation failed")
	}
	return nil
}

// ValidatePassword enforces the password policy: 8 to 128 characters with
// at least one uppercase letter, one lowercase letter, one digit, and one
// special character. All four classes are mandatory.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required.Error("password must not be empty"),
		validation.RuneLength(MinPasswordLength, 0).Error("password must be at least 8 characters long"),
		validation.RuneLength(0, MaxPasswordLength).Error("password must not exceed 128 characters"),
		validation.Match(passwordUppercase).Error("password must contain an uppercase letter"),
		validation.Match(passwordLowercase).Error("password must contain a lowercase letter"),
		validation.Match(passwordDigit).Error("password must contain a digit"),
		validation.Match(passwordSpecial).Error("password must contain a special character"),
	)
	if err != nil {
		return wrapValidation(err, "password validation failed")
	}
	return nil
}
