package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	obsmiddleware "github.com/smallbiznis/inviteportal/internal/observability/logger"
)

const HeaderAdminKey = "X-Admin-Key"

// WithCORS wraps the engine so preflight requests are answered before gin
// routing.
func WithCORS(h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			HeaderAdminKey,
			obsmiddleware.HeaderRequestID,
		},
		ExposedHeaders: []string{
			obsmiddleware.HeaderRequestID,
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           300,
	})(h)
}

// AdminKeyRequired guards the admin routes when ADMIN_API_KEY is set.
func (s *Server) AdminKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := s.cfg.AdminAPIKey
		if expected == "" {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader(HeaderAdminKey))
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
