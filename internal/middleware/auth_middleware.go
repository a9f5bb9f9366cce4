package middleware

import (
	"context"
	"errors"
	"strings"

	"ecowaste/internal/models"
	"ecowaste/internal/utils"
	"ecowaste/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextKeyUser     = "user"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
	logger        *logger.Logger
}

func NewAuthMiddleware(authenticator Authenticator, logger *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Optional attaches the caller when a valid token is present and lets the
// request through anonymously otherwise.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err == nil {
			setUser(c, user)
		}

		c.Next()
	}
}

// Required rejects requests without a valid token.
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// AdminRequired rejects requests whose account is not an admin.
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}

		if !GetIdentity(c).IsAdmin() {
			m.logger.LogSecurityEvent("admin_access_denied", "medium", map[string]interface{}{
				"user_id": c.GetString(ContextKeyUserID),
				"path":    c.Request.URL.Path,
			})
			utils.ForbiddenResponse(c, utils.ErrMsgAdminOnly)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		utils.UnauthorizedResponse(c, utils.ErrMsgUnauthorized)
		c.Abort()
		return false
	}

	user, err := m.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, utils.ErrUnauthorized) {
			utils.HandleError(c, err)
			c.Abort()
			return false
		}
		utils.UnauthorizedResponse(c, utils.ErrMsgInvalidToken)
		c.Abort()
		return false
	}

	setUser(c, user)
	return true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyUserID, user.ID.Hex())
	c.Set(ContextKeyUserRole, string(user.Role))
}

// GetUser returns the authenticated account, or nil for anonymous callers.
func GetUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// GetIdentity returns the caller identity, or nil for anonymous callers.
func GetIdentity(c *gin.Context) *models.Identity {
	user := GetUser(c)
	if user == nil {
		return nil
	}
	return &models.Identity{UserID: user.ID, Role: user.Role}
}

// GetUserID returns the authenticated account id, or nil.
func GetUserID(c *gin.Context) *primitive.ObjectID {
	user := GetUser(c)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
