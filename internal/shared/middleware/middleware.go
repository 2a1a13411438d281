package middleware

import (
	"errors"
	"strings"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/config"
	"propdesk/internal/shared/reqctx"
	"propdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// AccessClaims are the fields the middleware reads from an access token
type AccessClaims struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Type        string   `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

var (
	errMissingToken = apperrors.Unauthorized("Authentication is required")
	errInvalidToken = apperrors.Unauthorized("Invalid or expired token")
)

// Auth authenticates callers from a bearer header or the access token cookie
type Auth struct {
	secret     []byte
	cookieName string
	logger     *logger.Logger
}

// NewAuth creates the JWT middleware set
func NewAuth(cfg *config.Config) *Auth {
	return &Auth{
		secret:     []byte(cfg.JWT.Secret),
		cookieName: cfg.JWT.CookieName,
		logger:     logger.GetDefault(),
	}
}

// Required rejects unauthenticated callers with a 401
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := a.extractToken(c)
		if err != nil {
			abortWith(c, err)
			return
		}

		claims, err := a.ParseAccessToken(tokenString)
		if err != nil {
			a.logger.LogAuthFailure(c.Request.Context(), err.Error(), c.ClientIP())
			abortWith(c, errInvalidToken)
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// Optional validates a token if present but doesn't require it
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := a.extractToken(c)
		if err != nil {
			c.Next()
			return
		}
		if claims, err := a.ParseAccessToken(tokenString); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// ParseAccessToken verifies signature, expiry and token type
func (a *Auth) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Type != "access" {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

func (a *Auth) extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", apperrors.Unauthorized("Authorization header format must be Bearer {token}")
		}
		return parts[1], nil
	}
	if a.cookieName != "" {
		if cookie, err := c.Cookie(a.cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", errMissingToken
}

func setClaims(c *gin.Context, claims *AccessClaims) {
	reqctx.SetUser(c, reqctx.User{
		ID:          claims.UserID,
		Email:       claims.Email,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	})
}

// RequirePermission lets the request through only when the caller holds perm
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := reqctx.CurrentUser(c)
		if !ok {
			abortWith(c, errMissingToken)
			return
		}
		if !user.HasPermission(perm) {
			abortWith(c, apperrors.NewPermissionDenied(perm))
			return
		}
		c.Next()
	}
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := reqctx.CurrentUser(c)
		if !ok {
			abortWith(c, errMissingToken)
			return
		}

		for _, role := range requiredRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		abortWith(c, apperrors.NewRoleRequired(strings.Join(requiredRoles, " or ")))
	}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// RequestID tags every request with an X-Request-ID header
func RequestID(newID func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = newID()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
