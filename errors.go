package authlib

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so callers can discriminate
// without string matching.
const (
	TextCodeValidationFailure = "VALIDATION_FAILURE"
	TextCodeUserExists        = "USER_ALREADY_EXISTS"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeInvalidToken      = "INVALID_TOKEN"
	TextCodeStorageFailure    = "STORAGE_FAILURE"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodeMalformedHash     = "MALFORMED_PASSWORD_HASH"
)

// ErrUserAlreadyExists is returned when a registration conflicts with an
// existing email.
var ErrUserAlreadyExists = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserExists).
	WithCode(goerrors.CodeConflict)

// ErrUserNotFound is returned on a lookup miss.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials covers both a wrong password and an inactive
// account so callers cannot tell the two apart.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken covers bad signatures, wrong issuers, wrong token types,
// expiry, and revocation. Collapsed into a single kind on purpose.
var ErrInvalidToken = goerrors.New("invalid or expired token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the hasher-level mismatch error, mapped to
// ErrInvalidCredentials by the coordinator.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// validationError builds a ValidationError-kind error with a message.
func validationError(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidationFailure).
		WithCode(goerrors.CodeBadRequest)
}

// wrapValidation keeps the underlying rule failure while tagging the error
// as the validation kind.
func wrapValidation(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg).
		WithTextCode(TextCodeValidationFailure).
		WithCode(goerrors.CodeBadRequest)
}

// storageError surfaces durable-store failures without swallowing the cause.
func storageError(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeStorageFailure)
}

// IsValidationError reports whether err is the ValidationError kind.
func IsValidationError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryValidation
}

// IsInvalidTokenError reports whether err is the invalid-token kind.
func IsInvalidTokenError(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeInvalidToken
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
