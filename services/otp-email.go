package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"user-auth/mailer"
)

type OTPEmailInput struct {
	Email string `json:"email" validate:"required,basic_email"`
	Name  string `json:"name"`
	OTP   string `json:"otp" validate:"required"`
}

// SendOTPEmail delivers a one-time password generated by the caller. It is not retried.
func (s *AuthService) SendOTPEmail(ctx context.Context, in OTPEmailInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := check(in, "Email and OTP are required"); err != nil {
		return err
	}
	msg, err := mailer.OTPEmail(in.Email, in.Name, in.OTP)
	if err != nil {
		return internalError("render otp email", err)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Error("otp email failed", zap.String("to", in.Email), zap.Error(err))
		return externalError("Failed to send OTP email", err)
	}
	s.log.Info("otp email sent", zap.String("to", in.Email))
	return nil
}
