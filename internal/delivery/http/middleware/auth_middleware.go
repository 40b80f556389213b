package middleware

import (
	"errors"
	"log"
	"strings"

	"devlink/internal/metrics"
	"devlink/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey = "user_id"

	TokenHeader = "x-auth-token"

	MessageInvalidToken = "Token is not valid"
)

type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

type AuthMiddleware struct {
	tokens  TokenVerifier
	metrics metrics.AuthRecorder
	logger  *log.Logger
}

func NewAuthMiddleware(tokens TokenVerifier, rec metrics.AuthRecorder, logger *log.Logger) *AuthMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthMiddleware{tokens: tokens, metrics: rec, logger: logger}
}

// Require wraps a single handler, so public and protected routes can share a
// path prefix.
func (m *AuthMiddleware) Require(next fiber.Handler) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := tokenFromRequest(c)
		if !ok {
			m.reject(c, metrics.ReasonMissing, nil)
			return NewAppError(fiber.StatusUnauthorized, MessageInvalidToken, nil, nil)
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			reason := metrics.ReasonInvalid
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = metrics.ReasonExpired
			}
			m.reject(c, reason, err)
			return NewAppError(fiber.StatusUnauthorized, MessageInvalidToken, nil, err)
		}

		c.Locals(CtxUserIDKey, userID)
		return next(c)
	}
}

func (m *AuthMiddleware) reject(c fiber.Ctx, reason string, err error) {
	if m.metrics != nil {
		m.metrics.RecordTokenRejected(reason)
	}
	if reason != metrics.ReasonMissing {
		m.logger.Printf("[Auth] token rejected reason=%s path=%s err=%v", reason, c.Path(), err)
	}
}

// UserID returns the caller set by Require.
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func tokenFromRequest(c fiber.Ctx) (string, bool) {
	if tok := strings.TrimSpace(c.Get(TokenHeader)); tok != "" {
		return tok, true
	}
	return bearerTokenFromHeader(c.Get("Authorization"))
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
