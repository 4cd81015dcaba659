package api

import (
	"strings"
	"time"

	"user-auth/model"
	"user-auth/services"
)

// payload is the union of every request body field the routes accept.
type payload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	DateOfBirth     string `json:"dateOfBirth"`
	Gender          string `json:"gender"`
	PhotoURL        string `json:"photoURL"`
	IDToken         string `json:"idToken"`
	IsPhoneVerified *bool  `json:"isPhoneVerified"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	ServerAuthCode  string `json:"serverAuthCode"`
	OTP             string `json:"otp"`
	Image           string `json:"image"`
	ImageData       string `json:"image_data"`
}

// phone prefers phoneNumber over phone.
func (p *payload) phone() string {
	if strings.TrimSpace(p.PhoneNumber) != "" {
		return p.PhoneNumber
	}
	return p.Phone
}

func (p *payload) image() string {
	if p.Image != "" {
		return p.Image
	}
	return p.ImageData
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

// dateOfBirth returns nil for an empty value.
func (p *payload) dateOfBirth() (*time.Time, error) {
	s := strings.TrimSpace(p.DateOfBirth)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, &services.Error{Kind: services.KindValidation, Field: "dateOfBirth", Message: "Invalid date of birth"}
}

func (p *payload) gender() model.Gender {
	return model.Gender(strings.ToLower(strings.TrimSpace(p.Gender)))
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    any    `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

type phoneEnvelope struct {
	Success     bool    `json:"success"`
	PhoneNumber *string `json:"phoneNumber"`
}

type configEnvelope struct {
	Success bool `json:"success"`
	services.GoogleConfigStatus
}
