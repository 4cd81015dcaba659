package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-auth/model"
	"user-auth/store"
)

type UpdateProfileInput struct {
	Phone           string       `json:"phone"`
	Name            string       `json:"name" validate:"required"`
	DateOfBirth     *time.Time   `json:"dateOfBirth" validate:"required"`
	Gender          model.Gender `json:"gender" validate:"required,oneof=male female transgender other"`
	IsPhoneVerified *bool        `json:"isPhoneVerified"`
}

// UpdateProfile completes or edits the caller's profile and re-issues their token.
func (s *AuthService) UpdateProfile(ctx context.Context, token string, in UpdateProfileInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := check(in, "Name, date of birth, and gender are required"); err != nil {
		return nil, err
	}
	userID, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Phone != "" {
		user.Phone = model.StringPtr(in.Phone)
	}
	user.Name = in.Name
	user.DateOfBirth = in.DateOfBirth
	user.Gender = in.Gender
	if in.IsPhoneVerified != nil {
		user.IsPhoneVerified = *in.IsPhoneVerified
	}
	user.RegistrationComplete = true

	if err := s.users.Save(ctx, user); err != nil {
		return nil, writeError(err, "Profile update failed")
	}
	s.log.Info("profile updated", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

// Me resolves token and returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, token string) (*model.Profile, error) {
	userID, err := s.Authenticate(token)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// Logout only checks the token; sessions are stateless and expire on their own.
func (s *AuthService) Logout(token string) error {
	userID, err := s.Authenticate(token)
	if err != nil {
		return err
	}
	s.log.Info("user logged out", zap.String("user_id", userID))
	return nil
}

// CheckUser looks a user up by phone and/or email. Both given means both must match.
func (s *AuthService) CheckUser(ctx context.Context, phone, email string) (*model.CheckResult, error) {
	f := store.Filter{Phone: strings.TrimSpace(phone), Email: normalizeEmail(email)}
	if f.IsEmpty() {
		return nil, validationError("", "Phone or email is required")
	}
	user, err := s.findOne(ctx, f)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundError("User not found")
	}
	res := user.CheckResult()
	return &res, nil
}

type SetPasswordInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=6,bcrypt_max"`
}

// SetPassword overwrites the password of the account owning the email. token is
// only consulted when Options.RequireTokenForSetPassword is set.
func (s *AuthService) SetPassword(ctx context.Context, token string, in SetPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := check(in, "Email and password are required"); err != nil {
		return err
	}
	var callerID string
	if s.opts.RequireTokenForSetPassword {
		id, err := s.Authenticate(token)
		if err != nil {
			return err
		}
		callerID = id
	}

	user, err := s.findOne(ctx, store.Filter{Email: in.Email})
	if err != nil {
		return err
	}
	if user == nil {
		return notFoundError("User not found")
	}
	if callerID != "" && callerID != user.ID {
		return unauthorizedError("Token does not match this account", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return internalError("hash password", err)
	}
	user.Password = hash
	if err := s.users.Save(ctx, user); err != nil {
		return writeError(err, "Password update failed")
	}
	s.log.Info("password set", zap.String("user_id", user.ID))
	return nil
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// UploadAvatar stores a base64 encoded image and points the user's photoURL at it.
func (s *AuthService) UploadAvatar(ctx context.Context, userID, imageBase64 string) (*model.Profile, error) {
	imageBase64 = strings.TrimSpace(imageBase64)
	if imageBase64 == "" {
		return nil, validationError("image", "No image data provided")
	}
	if s.avatars == nil {
		return nil, configError("Avatar storage is not configured", nil)
	}
	// Accept data URLs as sent by browsers.
	if i := strings.Index(imageBase64, ";base64,"); i >= 0 {
		imageBase64 = imageBase64[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, validationError("image", "Invalid image data")
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, validationError("image", "Unsupported image type")
	}

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("avatars/%s.%s", uuid.NewString(), ext)
	url, err := s.avatars.PutObject(ctx, key, contentType, data)
	if err != nil {
		s.log.Error("avatar upload failed", zap.String("user_id", userID), zap.Error(err))
		return nil, externalError("Failed to upload image", err)
	}
	user.PhotoURL = url
	if err := s.users.Save(ctx, user); err != nil {
		return nil, writeError(err, "Avatar update failed")
	}
	p := user.Profile()
	return &p, nil
}
