package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")

	ErrInvalidCode     = errors.New("invalid confirmation code")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("authentication credentials were not provided")

	// ErrDuplicate is returned by repositories when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrUserNotFound, ErrTitleNotFound, ErrReviewNotFound,
		ErrCommentNotFound, ErrCategoryNotFound, ErrGenreNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// FieldErrors maps a field name to its messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f FieldErrors) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(f[k], "; "))
	}
	return strings.Join(parts, ", ")
}

// ValidationError reports malformed input, keyed by field.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

// NewValidationError builds a ValidationError carrying a single message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{field: {msg}}}
}

// ConflictError reports a uniqueness violation naming every colliding field.
type ConflictError struct {
	Fields FieldErrors
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Fields.String()
}

// Has reports whether field is among the colliding fields.
func (e *ConflictError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

const (
	MsgUsernameTaken = "a user with that username already exists"
	MsgEmailTaken    = "a user with that email already exists"
)

// NewUserConflict builds the conflict raised when signup or user creation
// collides on username, email, or both.
func NewUserConflict(username, email bool) *ConflictError {
	fields := FieldErrors{}
	if username {
		fields.Add("username", MsgUsernameTaken)
	}
	if email {
		fields.Add("email", MsgEmailTaken)
	}
	return &ConflictError{Fields: fields}
}
