// Package store persists User records and enforces sparse uniqueness of
// email, phone and googleId at write time.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user-auth/model"
)

// Unique field names reported by DuplicateKeyError.
const (
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldGoogleID = "googleId"
)

var ErrNotFound = errors.New("user not found")

// DuplicateKeyError is returned when a write collides with another record on a unique field.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return fmt.Sprintf("duplicate key on %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// Filter narrows a lookup. Empty fields are ignored; set fields are combined with AND.
type Filter struct {
	Email    string
	Phone    string
	GoogleID string
}

func (f Filter) IsEmpty() bool {
	return f.Email == "" && f.Phone == "" && f.GoogleID == ""
}

var errEmptyFilter = errors.New("store: empty filter")

// UserStore is the persistence contract used by the reconciliation engine.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindOne(ctx context.Context, f Filter) (*model.User, error)
	// Create inserts u, assigning an id when empty.
	Create(ctx context.Context, u *model.User) error
	// Save replaces the full record identified by u.ID.
	Save(ctx context.Context, u *model.User) error
	ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.User, error)
}

// duplicateField guesses the colliding field from a driver index or constraint name.
func duplicateField(s string) string {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "google"):
		return FieldGoogleID
	case strings.Contains(s, "phone"):
		return FieldPhone
	case strings.Contains(s, "email"):
		return FieldEmail
	}
	return ""
}

func stamp(u *model.User, creating bool) {
	now := time.Now().UTC()
	if creating && u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
