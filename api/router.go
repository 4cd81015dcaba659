// Package api maps API Gateway proxy requests onto AuthService operations.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"user-auth/services"
)

// PathPrefix is stripped from incoming paths before routing.
const PathPrefix = "/api/auth"

type handlerFunc func(ctx context.Context, req *request) (int, any, error)

type request struct {
	body  payload
	token string
}

type Router struct {
	svc         *services.AuthService
	log         *zap.Logger
	allowOrigin string
	routes      map[string]handlerFunc
}

// NewRouter builds the route table. allowOrigin is echoed in CORS headers; empty disables them.
func NewRouter(svc *services.AuthService, log *zap.Logger, allowOrigin string) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{svc: svc, log: log, allowOrigin: allowOrigin}
	r.routes = map[string]handlerFunc{
		"POST /register":       r.register,
		"POST /login":          r.login,
		"POST /logout":         r.logout,
		"POST /verify-phone":   r.verifyPhone,
		"POST /update-profile": r.updateProfile,
		"POST /google-signin":  r.googleSignIn,
		"POST /google-phone":   r.googlePhone,
		"POST /check-user":     r.checkUser,
		"POST /send-otp-email": r.sendOTPEmail,
		"POST /set-password":   r.setPassword,
		"POST /avatar":         r.uploadAvatar,
		"GET /profile":         r.profile,
		"GET /me":              r.me,
		"GET /google-config":   r.googleConfig,
	}
	return r
}

// Handle serves one API Gateway request. It never returns an error; every failure
// becomes a JSON response.
func (r *Router) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	start := time.Now()
	path := routePath(req.Path)
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("panic while handling request",
				zap.String("path", path), zap.Any("panic", p), zap.Stack("stack"))
			resp = r.respond(http.StatusInternalServerError, envelope{Message: "Server error"})
		}
		r.log.Info("request",
			zap.String("method", req.HTTPMethod),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("took", time.Since(start)))
	}()

	if req.HTTPMethod == http.MethodOptions {
		return r.respond(http.StatusNoContent, nil), nil
	}
	h, ok := r.routes[req.HTTPMethod+" "+path]
	if !ok {
		return r.respond(http.StatusNotFound, envelope{Message: "Not Found"}), nil
	}

	in := &request{token: bearerToken(req.Headers)}
	if err = decodeBody(req, &in.body); err != nil {
		return r.respond(http.StatusBadRequest, envelope{Message: "Invalid request body"}), nil
	}
	status, out, err := h(ctx, in)
	if err != nil {
		return r.fail(path, err), nil
	}
	return r.respond(status, out), nil
}

func (r *Router) fail(path string, err error) events.APIGatewayProxyResponse {
	var e *services.Error
	if !errors.As(err, &e) {
		r.log.Error("unclassified error", zap.String("path", path), zap.Error(err))
		return r.respond(http.StatusInternalServerError, envelope{Message: "Server error"})
	}
	status := StatusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed", zap.String("path", path), zap.Stringer("kind", e.Kind), zap.Error(e))
	}
	body := envelope{Message: e.Message, Error: e.Detail}
	return r.respond(status, body)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k services.Kind) int {
	switch k {
	case services.KindValidation, services.KindConflict, services.KindWrongMethod:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) respond(status int, body any) events.APIGatewayProxyResponse {
	headers := map[string]string{"Content-Type": "application/json"}
	if r.allowOrigin != "" {
		headers["Access-Control-Allow-Origin"] = r.allowOrigin
		headers["Access-Control-Allow-Headers"] = "Content-Type, Authorization"
		headers["Access-Control-Allow-Methods"] = "GET, POST, OPTIONS"
	}
	resp := events.APIGatewayProxyResponse{StatusCode: status, Headers: headers}
	if body == nil {
		return resp
	}
	b, err := json.Marshal(body)
	if err != nil {
		r.log.Error("encode response", zap.Error(err))
		resp.StatusCode = http.StatusInternalServerError
		b = []byte(`{"success":false,"message":"Server error"}`)
	}
	resp.Body = string(b)
	return resp
}

// routePath drops the mount prefix, any API Gateway stage segment before it and a trailing slash.
func routePath(p string) string {
	if i := strings.Index(p, PathPrefix); i >= 0 {
		p = p[i+len(PathPrefix):]
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

func bearerToken(headers map[string]string) string {
	for k, v := range headers {
		if !strings.EqualFold(k, "Authorization") {
			continue
		}
		scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func decodeBody(req events.APIGatewayProxyRequest, dst *payload) error {
	raw := req.Body
	if req.IsBase64Encoded && raw != "" {
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("decode base64 body: %w", err)
		}
		raw = string(b)
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
