package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/models"
)

var middlewareTracer = otel.Tracer("auth-middleware")

// Gin context keys set by Gate
const (
	SubjectKey = "subject"
	ClaimsKey  = "claims"
)

// Gate verifies bearer tokens when enabled. With enabled false it is a
// pass-through and tm may be nil. The token is read from the Authorization
// header, or from the token query parameter for WebSocket clients.
func Gate(enabled bool, tm *TokenManager, log *zap.Logger) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	log = logger.OrNop(log).Named("auth")

	return func(c *gin.Context) {
		ctx, span := middlewareTracer.Start(c.Request.Context(), "auth.gate")
		defer span.End()

		token := extractToken(c)
		span.SetAttributes(attribute.Bool("auth.token_present", token != ""))

		claims, err := tm.ValidateToken(ctx, token)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("auth.token_valid", false))
			log.Warn("rejected request",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: unauthorizedMessage(err),
				Code:  models.ErrCodeUnauthorized,
			})
			return
		}

		span.SetAttributes(
			attribute.Bool("auth.token_valid", true),
			attribute.String("jwt.subject", claims.Subject),
		)
		c.Set(SubjectKey, claims.Subject)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	const prefix = "Bearer "
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return c.Query("token")
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "Authorization header missing"
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	default:
		return "Invalid token"
	}
}
