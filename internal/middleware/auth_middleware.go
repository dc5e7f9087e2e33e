// Package middleware contains the Gin middleware chain: authentication,
// request logging, panic recovery and CORS.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the Gin context key under which the authenticated user's id is
// stored for downstream handlers.
const UserIDKey = "userID"

// errorResponse mirrors api.ErrorResponse locally to avoid an import cycle.
type errorResponse struct {
	Error string `json:"error"`
}

// MembershipLoader primes a user's memberships in the local mirror so role
// resolution sees delegations granted before this process started.
type MembershipLoader interface {
	EnsureMemberships(ctx context.Context, userID string) error
}

// AuthMiddleware verifies Firebase ID tokens on incoming requests.
type AuthMiddleware struct {
	authClient  *auth.Client
	memberships MembershipLoader
	logger      *zap.Logger
}

// NewAuthMiddleware creates the middleware over an initialized Firebase Auth
// client.
func NewAuthMiddleware(authClient *auth.Client, memberships MembershipLoader, logger *zap.Logger) *AuthMiddleware {
	if authClient == nil {
		panic("auth middleware requires an initialized Firebase Auth client")
	}
	return &AuthMiddleware{authClient: authClient, memberships: memberships, logger: logger}
}

// VerifyToken validates the Bearer token of the Authorization header and sets
// the acting user's id in the request context. Requests without a valid token
// are rejected with 401.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.authClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			// Generic message to the client; detail stays server-side.
			m.logger.Warn("token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		// First sight of a user loads their memberships; later requests are
		// local no-ops. A failed load is not fatal: role lookups deny until
		// a later request retries it.
		if err := m.memberships.EnsureMemberships(c.Request.Context(), token.UID); err != nil {
			m.logger.Warn("failed to load memberships", zap.String("userId", token.UID), zap.Error(err))
		}

		c.Set(UserIDKey, token.UID)
		c.Next()
	}
}
