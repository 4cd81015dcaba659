package model

import "time"

// Summary is the user block returned alongside a freshly issued token.
type Summary struct {
	ID                   string `json:"id"`
	Name                 string `json:"name,omitempty"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	RegistrationComplete bool   `json:"registrationComplete"`
}

// CheckResult is the password-free lookup answer for check-user.
type CheckResult struct {
	Summary
	CanLoginWithPassword bool `json:"canLoginWithPassword"`
}

// Profile is the full self-view of an authenticated user.
type Profile struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name,omitempty"`
	Email                string     `json:"email,omitempty"`
	Phone                string     `json:"phone,omitempty"`
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty"`
	Gender               Gender     `json:"gender,omitempty"`
	PhotoURL             string     `json:"photoURL,omitempty"`
	IsPhoneVerified      bool       `json:"isPhoneVerified"`
	IsEmailVerified      bool       `json:"isEmailVerified"`
	RegistrationComplete bool       `json:"registrationComplete"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.EmailValue(),
		Phone:                u.PhoneValue(),
		RegistrationComplete: u.RegistrationComplete,
	}
}

func (u *User) CheckResult() CheckResult {
	return CheckResult{Summary: u.Summary(), CanLoginWithPassword: u.HasPassword()}
}

func (u *User) Profile() Profile {
	return Profile{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.EmailValue(),
		Phone:                u.PhoneValue(),
		DateOfBirth:          u.DateOfBirth,
		Gender:               u.Gender,
		PhotoURL:             u.PhotoURL,
		IsPhoneVerified:      u.IsPhoneVerified,
		IsEmailVerified:      u.IsEmailVerified,
		RegistrationComplete: u.RegistrationComplete,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
