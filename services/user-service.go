// Package services holds the identity reconciliation rules: how email/password,
// phone and Google sign-ins create, match and merge User records, and when a
// token is issued.
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"user-auth/mailer"
	"user-auth/model"
	"user-auth/store"
)

const defaultGoogleTimeout = 10 * time.Second

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// PhoneLookup resolves a Google server auth code to the account's phone number.
type PhoneLookup interface {
	Configured() bool
	PhoneNumber(ctx context.Context, serverAuthCode string) (string, error)
}

// IDTokenVerifier validates a Google ID token and returns its email claim.
type IDTokenVerifier interface {
	Email(ctx context.Context, idToken string) (string, error)
}

type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Deps are the collaborators of AuthService. Phones, IDTokens and Avatars are optional.
type Deps struct {
	Users    store.UserStore
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Mail     mailer.Sender
	Phones   PhoneLookup
	IDTokens IDTokenVerifier
	Avatars  ObjectStore
	Log      *zap.Logger
}

// Options is the immutable policy configuration of AuthService.
type Options struct {
	RequireTokenForSetPassword bool
	GoogleClientID             string
	GoogleClientSecret         string
	GoogleTimeout              time.Duration
}

type AuthService struct {
	users    store.UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	mail     mailer.Sender
	phones   PhoneLookup
	idTokens IDTokenVerifier
	avatars  ObjectStore
	log      *zap.Logger
	opts     Options
	now      func() time.Time
}

func NewAuthService(deps Deps, opts Options) *AuthService {
	if opts.GoogleTimeout <= 0 {
		opts.GoogleTimeout = defaultGoogleTimeout
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:    deps.Users,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		mail:     deps.Mail,
		phones:   deps.Phones,
		idTokens: deps.IDTokens,
		avatars:  deps.Avatars,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// AuthResult is returned by every operation that issues a token.
type AuthResult struct {
	Token string        `json:"token"`
	User  model.Summary `json:"user"`
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, internalError("issue token", err)
	}
	return &AuthResult{Token: token, User: u.Summary()}, nil
}

// Authenticate resolves a bearer token to a user id.
func (s *AuthService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", unauthorizedError("No token provided", nil)
	}
	id, err := s.tokens.Verify(token)
	if err != nil {
		return "", unauthorizedError("Invalid or expired token", err)
	}
	return id, nil
}

// findOne returns (nil, nil) when no record matches.
func (s *AuthService) findOne(ctx context.Context, f store.Filter) (*model.User, error) {
	u, err := s.users.FindOne(ctx, f)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("find user", err)
	}
	return u, nil
}

func (s *AuthService) findByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		return nil, internalError("find user by id", err)
	}
	return u, nil
}

// writeError turns a store write failure into a field-specific Conflict when a
// unique index rejected it.
func writeError(err error, fallback string) error {
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) {
		return internalError("write user", err)
	}
	switch dup.Field {
	case store.FieldEmail:
		return conflictError(dup.Field, "Email already in use", err)
	case store.FieldPhone:
		return conflictError(dup.Field, "Phone number already in use", err)
	case store.FieldGoogleID:
		return conflictError(dup.Field, "Google account already linked to another user", err)
	}
	return conflictError("", fallback, err)
}
