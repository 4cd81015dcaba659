package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const maxBodyBytes = 10 << 20

// HTTPHandler serves the same routes over plain HTTP for local development.
// Requests are translated into API Gateway proxy events and passed to Handle.
func (r *Router) HTTPHandler(allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	})
	mux.Handle(PathPrefix+"/*", http.HandlerFunc(r.serveHTTP))
	return mux
}

func (r *Router) serveHTTP(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"success":false,"message":"Invalid request body"}`, http.StatusBadRequest)
		return
	}
	event := events.APIGatewayProxyRequest{
		HTTPMethod:            req.Method,
		Path:                  req.URL.Path,
		Headers:               map[string]string{},
		QueryStringParameters: map[string]string{},
		Body:                  string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: middleware.GetReqID(req.Context()),
		},
	}
	for k := range req.Header {
		event.Headers[k] = req.Header.Get(k)
	}
	for k := range req.URL.Query() {
		event.QueryStringParameters[k] = req.URL.Query().Get(k)
	}

	resp, _ := r.Handle(req.Context(), event)
	for k, v := range resp.Headers {
		// cors middleware owns these for plain HTTP.
		if strings.HasPrefix(k, "Access-Control-") {
			continue
		}
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
