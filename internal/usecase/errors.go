package usecase

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_FAILED"
	KindMissingCredential   ErrorKind = "MISSING_CREDENTIAL"
	KindInvalidCredentials  ErrorKind = "INVALID_CREDENTIALS"
	KindAccountNotFound     ErrorKind = "ACCOUNT_NOT_FOUND"
	KindEmailNotVerified    ErrorKind = "EMAIL_NOT_VERIFIED"
	KindInvalidToken        ErrorKind = "INVALID_OR_EXPIRED_TOKEN"
	KindSessionRevoked      ErrorKind = "SESSION_REVOKED"
	KindUserNotFound        ErrorKind = "USER_NOT_FOUND"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindConflict            ErrorKind = "CONFLICT"
	KindInvalidVerification ErrorKind = "INVALID_VERIFICATION_TOKEN"
	KindInvalidResetToken   ErrorKind = "INVALID_RESET_TOKEN"
	KindInternal            ErrorKind = "INTERNAL"
)

// Status maps a kind to the HTTP status the API answers with.
func (k ErrorKind) Status() int {
	switch k {
	case KindMissingCredential, KindInvalidCredentials, KindInvalidToken, KindSessionRevoked, KindUserNotFound:
		return http.StatusUnauthorized
	case KindEmailNotVerified:
		return http.StatusForbidden
	case KindAccountNotFound, KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidation, KindInvalidVerification, KindInvalidResetToken:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type services return. Message is safe to show to
// clients; Err holds the detail that only goes to logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so errors.Is(err, ErrInvalidToken) holds for any
// invalid-token error regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrMissingCredential   = &Error{Kind: KindMissingCredential, Message: "Authentication required"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	ErrAccountNotFound     = &Error{Kind: KindAccountNotFound, Message: "You are not registered with this username or email"}
	ErrEmailNotVerified    = &Error{Kind: KindEmailNotVerified, Message: "Email not verified. Check your inbox for the verification link"}
	ErrInvalidToken        = &Error{Kind: KindInvalidToken, Message: "Invalid or expired token"}
	ErrSessionRevoked      = &Error{Kind: KindSessionRevoked, Message: "Session has been revoked or expired"}
	ErrUserNotFound        = &Error{Kind: KindUserNotFound, Message: "User not found"}
	ErrInvalidVerification = &Error{Kind: KindInvalidVerification, Message: "Invalid or expired verification token"}
	ErrInvalidResetToken   = &Error{Kind: KindInvalidResetToken, Message: "Invalid or expired reset token"}
)

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(message string) *Error {
	return newError(KindValidation, message)
}

func notFound(message string) *Error {
	return newError(KindNotFound, message)
}

func conflict(message string) *Error {
	return newError(KindConflict, message)
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf reports the kind of err, INTERNAL for anything untyped.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
