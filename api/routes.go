package api

import (
	"context"
	"net/http"

	"user-auth/model"
	"user-auth/services"
)

func (r *Router) register(ctx context.Context, req *request) (int, any, error) {
	dob, err := req.body.dateOfBirth()
	if err != nil {
		return 0, nil, err
	}
	res, err := r.svc.Register(ctx, services.RegisterInput{
		Name:            req.body.Name,
		Email:           req.body.Email,
		Phone:           req.body.phone(),
		Password:        req.body.Password,
		DateOfBirth:     dob,
		Gender:          req.body.gender(),
		IsPhoneVerified: req.body.IsPhoneVerified != nil && *req.body.IsPhoneVerified,
		IsEmailVerified: req.body.IsEmailVerified,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, tokenEnvelope("User registered successfully", res), nil
}

func (r *Router) login(ctx context.Context, req *request) (int, any, error) {
	res, err := r.svc.Login(ctx, services.LoginInput{Email: req.body.Email, Password: req.body.Password})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, tokenEnvelope("Login successful", res), nil
}

func (r *Router) logout(_ context.Context, req *request) (int, any, error) {
	if err := r.svc.Logout(req.token); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, Message: "Logged out successfully"}, nil
}

func (r *Router) verifyPhone(ctx context.Context, req *request) (int, any, error) {
	res, err := r.svc.VerifyPhone(ctx, req.body.phone())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, tokenEnvelope("Phone verified successfully", res), nil
}

func (r *Router) updateProfile(ctx context.Context, req *request) (int, any, error) {
	dob, err := req.body.dateOfBirth()
	if err != nil {
		return 0, nil, err
	}
	res, err := r.svc.UpdateProfile(ctx, req.token, services.UpdateProfileInput{
		Phone:           req.body.phone(),
		Name:            req.body.Name,
		DateOfBirth:     dob,
		Gender:          req.body.gender(),
		IsPhoneVerified: req.body.IsPhoneVerified,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, tokenEnvelope("Profile updated successfully", res), nil
}

func (r *Router) googleSignIn(ctx context.Context, req *request) (int, any, error) {
	dob, err := req.body.dateOfBirth()
	if err != nil {
		return 0, nil, err
	}
	res, err := r.svc.GoogleSignIn(ctx, services.GoogleSignInInput{
		Name:        req.body.Name,
		Email:       req.body.Email,
		Phone:       req.body.phone(),
		PhotoURL:    req.body.PhotoURL,
		DateOfBirth: dob,
		Gender:      req.body.gender(),
		IDToken:     req.body.IDToken,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, tokenEnvelope("Google sign-in successful", res), nil
}

func (r *Router) googlePhone(ctx context.Context, req *request) (int, any, error) {
	phone, err := r.svc.GooglePhoneLookup(ctx, req.body.ServerAuthCode)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, phoneEnvelope{Success: true, PhoneNumber: model.StringPtr(phone)}, nil
}

func (r *Router) checkUser(ctx context.Context, req *request) (int, any, error) {
	res, err := r.svc.CheckUser(ctx, req.body.phone(), req.body.Email)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, User: res}, nil
}

func (r *Router) sendOTPEmail(ctx context.Context, req *request) (int, any, error) {
	err := r.svc.SendOTPEmail(ctx, services.OTPEmailInput{Email: req.body.Email, Name: req.body.Name, OTP: req.body.OTP})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, Message: "OTP email sent successfully"}, nil
}

func (r *Router) setPassword(ctx context.Context, req *request) (int, any, error) {
	err := r.svc.SetPassword(ctx, req.token, services.SetPasswordInput{Email: req.body.Email, Password: req.body.Password})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, Message: "Password set successfully"}, nil
}

func (r *Router) uploadAvatar(ctx context.Context, req *request) (int, any, error) {
	userID, err := r.svc.Authenticate(req.token)
	if err != nil {
		return 0, nil, err
	}
	p, err := r.svc.UploadAvatar(ctx, userID, req.body.image())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, Message: "Avatar updated successfully", User: p}, nil
}

func (r *Router) profile(ctx context.Context, req *request) (int, any, error) {
	userID, err := r.svc.Authenticate(req.token)
	if err != nil {
		return 0, nil, err
	}
	p, err := r.svc.GetProfile(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, User: p}, nil
}

func (r *Router) me(ctx context.Context, req *request) (int, any, error) {
	p, err := r.svc.Me(ctx, req.token)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, envelope{Success: true, User: p}, nil
}

func (r *Router) googleConfig(context.Context, *request) (int, any, error) {
	return http.StatusOK, configEnvelope{Success: true, GoogleConfigStatus: r.svc.GoogleConfigStatus()}, nil
}

func tokenEnvelope(msg string, res *services.AuthResult) envelope {
	return envelope{Success: true, Message: msg, Token: res.Token, User: res.User}
}
