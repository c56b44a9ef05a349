package service

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the project does not exist or was rejected.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectNotPending indicates a review was attempted on a decided project.
	ErrProjectNotPending = errors.New("project is no longer pending")
	// ErrAdminStudentNotFound indicates the student was not found for admin operations.
	ErrAdminStudentNotFound = errors.New("student not found")
	// ErrUserNotFound indicates the account behind a token no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates the email and password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken indicates a refresh token is malformed, expired or of the wrong type.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrProposalTooLarge indicates the uploaded proposal exceeds the size limit.
	ErrProposalTooLarge = errors.New("proposal file exceeds maximum allowed size")
	// ErrProposalTypeNotAllowed indicates the sniffed proposal type is not accepted.
	ErrProposalTypeNotAllowed = errors.New("proposal file type not allowed")
	// ErrStorageUnavailable indicates no file storage is configured.
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// ValidationError reports a request field that failed a domain check the
// struct validator cannot express.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
