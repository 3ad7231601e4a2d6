// Package gateway is the thin server between the browser and the
// platform API: token validation, the S3 upload proxy, and the bot
// registration proxy. It holds no product state of its own.
package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/botforge/botforge/internal/platform"
	"github.com/botforge/botforge/pkg/config"
)

type Handler struct {
	platform      *platform.Client
	objects       ObjectStore
	jwtSecret     string
	loginURL      string
	presignExpiry time.Duration
	logger        *zap.Logger
}

func NewHandler(pc *platform.Client, objects ObjectStore, cfg config.GatewayConfig, logger *zap.Logger) *Handler {
	return &Handler{
		platform:      pc,
		objects:       objects,
		jwtSecret:     cfg.JWTSecret,
		loginURL:      cfg.LoginURL,
		presignExpiry: cfg.S3.PresignExpiry,
		logger:        logger,
	}
}

// Routes mounts every gateway endpoint. All of them sit behind the
// access-token cookie guard; an unauthenticated browser is sent to
// the login surface, not given a JSON error.
func (h *Handler) Routes(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Group(func(r chi.Router) {
		r.Use(h.RequireToken)
		r.Get("/api/v1/auth/validate-token", h.handleValidateToken)
		r.Get("/api/v1/auth/decode", h.handleDecodeToken)
		r.Post("/api/v1/upload", h.handleUpload)
		r.Post("/api/v1/bot/create", h.handleCreateBot)
	})
	r.Get("/api/v1/bot/{botID}", h.handleGetBot)

	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
