package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"user-auth/google"
)

// GooglePhoneLookup returns the phone number on the Google account behind
// serverAuthCode, or "" if it has none. It never touches the user store.
func (s *AuthService) GooglePhoneLookup(ctx context.Context, serverAuthCode string) (string, error) {
	serverAuthCode = strings.TrimSpace(serverAuthCode)
	if serverAuthCode == "" {
		return "", validationError("serverAuthCode", "Server auth code is required")
	}
	if s.phones == nil || !s.phones.Configured() {
		return "", configError("Server configuration error: Google OAuth credentials missing", google.ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.GoogleTimeout)
	defer cancel()

	phone, err := s.phones.PhoneNumber(ctx, serverAuthCode)
	switch {
	case errors.Is(err, google.ErrNotConfigured):
		return "", configError("Server configuration error: Google OAuth credentials missing", err)
	case errors.Is(err, google.ErrInvalidClient):
		s.log.Error("google rejected client credentials", zap.Error(err))
		return "", configError("Google OAuth configuration error. Please check your Google API credentials.", err)
	case err != nil:
		s.log.Error("google phone lookup failed", zap.Error(err))
		e := externalError("Failed to fetch phone number from Google", err)
		e.Detail = err.Error()
		return "", e
	}
	return phone, nil
}

// GoogleConfigStatus reports which Google credentials are present, never their values.
type GoogleConfigStatus struct {
	HasClientID        bool `json:"hasClientId"`
	HasClientSecret    bool `json:"hasClientSecret"`
	ClientIDLength     int  `json:"clientIdLength"`
	ClientSecretLength int  `json:"clientSecretLength"`
}

func (s *AuthService) GoogleConfigStatus() GoogleConfigStatus {
	return GoogleConfigStatus{
		HasClientID:        s.opts.GoogleClientID != "",
		HasClientSecret:    s.opts.GoogleClientSecret != "",
		ClientIDLength:     len(s.opts.GoogleClientID),
		ClientSecretLength: len(s.opts.GoogleClientSecret),
	}
}
