package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-auth/auth"
	"user-auth/model"
	"user-auth/store"
)

type RegisterInput struct {
	Name            string       `json:"name" validate:"required"`
	Email           string       `json:"email" validate:"required,basic_email"`
	Phone           string       `json:"phone"`
	Password        string       `json:"password" validate:"omitempty,min=6,bcrypt_max"`
	DateOfBirth     *time.Time   `json:"dateOfBirth" validate:"required"`
	Gender          model.Gender `json:"gender" validate:"required,oneof=male female transgender other"`
	IsPhoneVerified bool         `json:"isPhoneVerified"`
	IsEmailVerified bool         `json:"isEmailVerified"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	s.log.Info("registration attempt", zap.String("email", in.Email), zap.String("phone", in.Phone))

	if err := check(in, "Name, email, date of birth, and gender are required"); err != nil {
		return nil, err
	}

	existing, err := s.findOne(ctx, store.Filter{Email: in.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictError(store.FieldEmail, "Email already in use", nil)
	}
	if in.Phone != "" {
		existing, err = s.findOne(ctx, store.Filter{Phone: in.Phone})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, conflictError(store.FieldPhone, "Phone number already in use", nil)
		}
	}

	user := &model.User{
		Name:                 in.Name,
		Email:                model.StringPtr(in.Email),
		Phone:                model.StringPtr(in.Phone),
		DateOfBirth:          in.DateOfBirth,
		Gender:               in.Gender,
		IsPhoneVerified:      in.IsPhoneVerified,
		IsEmailVerified:      in.IsEmailVerified,
		RegistrationComplete: true,
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, internalError("hash password", err)
		}
		user.Password = hash
	}
	// The pre-checks above only give friendlier errors; the unique indexes decide races.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, writeError(err, "Registration failed")
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

const invalidCredentials = "Invalid email or password"

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := check(in, "Email and password are required"); err != nil {
		return nil, err
	}

	user, err := s.findOne(ctx, store.Filter{Email: in.Email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundError(invalidCredentials)
	}
	if !user.HasPassword() {
		return nil, wrongMethodError("This account was created with Google Sign-In or phone verification. Please use the original sign-in method.")
	}
	if !s.hasher.Verify(in.Password, user.Password) {
		s.log.Info("login rejected", zap.String("user_id", user.ID))
		return nil, unauthorizedError(invalidCredentials, nil)
	}
	return s.issue(user)
}

// VerifyPhone signs in the user owning phone, creating a minimal phone-verified
// record on first contact.
func (s *AuthService) VerifyPhone(ctx context.Context, phone string) (*AuthResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, validationError("phone", "Phone number is required")
	}

	user, err := s.findOne(ctx, store.Filter{Phone: phone})
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &model.User{Phone: model.StringPtr(phone), IsPhoneVerified: true}
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent request created it first; sign in as that record.
			user, err = s.afterCreateRace(ctx, err, store.Filter{Phone: phone})
			if err != nil {
				return nil, err
			}
		} else {
			s.log.Info("phone-first user created", zap.String("user_id", user.ID))
		}
	}
	return s.issue(user)
}

func (s *AuthService) afterCreateRace(ctx context.Context, createErr error, f store.Filter) (*model.User, error) {
	werr := writeError(createErr, "Account creation failed")
	if KindOf(werr) != KindConflict {
		return nil, werr
	}
	user, err := s.findOne(ctx, f)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, werr
	}
	return user, nil
}

type GoogleSignInInput struct {
	Name        string       `json:"name"`
	Email       string       `json:"email" validate:"required,basic_email"`
	Phone       string       `json:"phone"`
	PhotoURL    string       `json:"photoURL"`
	DateOfBirth *time.Time   `json:"dateOfBirth"`
	Gender      model.Gender `json:"gender" validate:"omitempty,oneof=male female transgender other"`
	IDToken     string       `json:"idToken"`
}

// GoogleSignIn merges a Google identity into the account owning the email, or
// creates one. A created account gets a random password hash so it exists but
// cannot be guessed until the user sets their own.
func (s *AuthService) GoogleSignIn(ctx context.Context, in GoogleSignInInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	s.log.Info("google sign-in attempt", zap.String("email", in.Email))

	if err := check(in, "Email is required"); err != nil {
		return nil, err
	}
	if s.idTokens != nil {
		if err := s.verifyIDToken(ctx, in.IDToken, in.Email); err != nil {
			return nil, err
		}
	}

	user, err := s.findOne(ctx, store.Filter{Email: in.Email})
	if err != nil {
		return nil, err
	}
	if user != nil {
		mergeGoogle(user, in)
		if err := s.users.Save(ctx, user); err != nil {
			return nil, writeError(err, "Google sign-in failed")
		}
		return s.issue(user)
	}

	secret, err := auth.RandomSecret(16)
	if err != nil {
		return nil, internalError("generate password", err)
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, internalError("hash password", err)
	}
	dob := in.DateOfBirth
	if dob == nil {
		now := s.now()
		dob = &now
	}
	gender := in.Gender
	if gender == "" {
		gender = model.GenderOther
	}
	user = &model.User{
		Name:            in.Name,
		Email:           model.StringPtr(in.Email),
		Phone:           model.StringPtr(in.Phone),
		Password:        hash,
		DateOfBirth:     dob,
		Gender:          gender,
		PhotoURL:        in.PhotoURL,
		GoogleID:        model.StringPtr(in.IDToken),
		IsEmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, writeError(err, "Google sign-in failed")
	}
	s.log.Info("google user created", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) verifyIDToken(ctx context.Context, idToken, email string) error {
	if idToken == "" {
		return unauthorizedError("Google ID token is required", nil)
	}
	claimed, err := s.idTokens.Email(ctx, idToken)
	if err != nil {
		return unauthorizedError("Invalid Google ID token", err)
	}
	if normalizeEmail(claimed) != email {
		return unauthorizedError("Google account does not match email", nil)
	}
	return nil
}

// mergeGoogle overwrites the profile fields the sign-in actually supplied.
func mergeGoogle(user *model.User, in GoogleSignInInput) {
	if user.GoogleID == nil && in.IDToken != "" {
		user.GoogleID = model.StringPtr(in.IDToken)
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.PhotoURL != "" {
		user.PhotoURL = in.PhotoURL
	}
	if in.Phone != "" {
		user.Phone = model.StringPtr(in.Phone)
	}
	if in.DateOfBirth != nil {
		user.DateOfBirth = in.DateOfBirth
	}
	if in.Gender != "" {
		user.Gender = in.Gender
	}
	user.IsEmailVerified = true
}
