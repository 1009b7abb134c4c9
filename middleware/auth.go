package middleware

import (
	"strings"

	"content-review-cms/helper"
	"content-review-cms/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates bearer tokens issued by the auth service.
type Authenticator struct {
	secret []byte
	helper *helper.HTTPHelper
}

func NewAuthenticator(secret []byte, httpHelper *helper.HTTPHelper) *Authenticator {
	return &Authenticator{secret: secret, helper: httpHelper}
}

func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			a.helper.SendUnauthorizedError(c, "Authorization header required", a.helper.EmptyJsonMap())
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			a.helper.SendUnauthorizedError(c, "Bearer token required", a.helper.EmptyJsonMap())
			c.Abort()
			return
		}

		claims, err := a.parse(tokenString)
		if err != nil {
			a.helper.SendUnauthorizedError(c, "Invalid token: "+err.Error(), a.helper.EmptyJsonMap())
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if claims, err := a.parse(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRole, claims.Role)
}

func (a *Authenticator) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			a.helper.SendUnauthorizedError(c, "User role not found", a.helper.EmptyJsonMap())
			c.Abort()
			return
		}

		roleStr, _ := userRole.(string)
		for _, role := range roles {
			if roleStr == string(role) {
				c.Next()
				return
			}
		}

		a.helper.SendForbiddenError(c, "Insufficient permissions", a.helper.EmptyJsonMap())
		c.Abort()
	}
}

// CurrentUser returns the caller identified by AuthMiddleware or OptionalAuth.
func CurrentUser(c *gin.Context) (models.ResolvedUserCredential, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return models.ResolvedUserCredential{}, false
	}
	userID, _ := id.(uint)
	return models.ResolvedUserCredential{
		ID:       int64(userID),
		Username: c.GetString(ContextUsername),
		Role:     models.UserRole(c.GetString(ContextRole)),
	}, true
}
