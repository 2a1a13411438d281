package auth

import (
	"net/http"

	"propdesk/internal/apperrors"
	"propdesk/internal/shared/config"
	"propdesk/internal/shared/reqctx"
	"propdesk/internal/shared/utils/response"
	"propdesk/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service      Service
	cookieName   string
	cookieSecure bool
}

func NewController(service Service, cfg *config.Config) *Controller {
	return &Controller{
		service:      service,
		cookieName:   cfg.JWT.CookieName,
		cookieSecure: cfg.Web.CookieSecure,
	}
}

func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := validation.Bind(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "User registered successfully", resp, nil)
}

// Login returns the token pair and also sets the access token cookie used
// by browser sessions.
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := validation.Bind(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.setAccessCookie(ctx, resp.AccessToken, int(resp.ExpiresIn))
	response.RespondJSON(ctx, "success", http.StatusOK, "Login successful", resp, nil)
}

func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := validation.Bind(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	tokenPair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.setAccessCookie(ctx, tokenPair.AccessToken, int(tokenPair.ExpiresIn))
	response.RespondJSON(ctx, "success", http.StatusOK, "Token refreshed successfully", tokenPair, nil)
}

func (c *Controller) Logout(ctx *gin.Context) {
	c.setAccessCookie(ctx, "", -1)
	response.RespondJSON(ctx, "success", http.StatusOK, "Logged out successfully", nil, nil)
}

func (c *Controller) ChangePassword(ctx *gin.Context) {
	user, ok := reqctx.CurrentUser(ctx)
	if !ok {
		_ = ctx.Error(apperrors.Unauthorized("Authentication is required"))
		return
	}

	var req ChangePasswordRequest
	if err := validation.Bind(ctx, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := c.service.ChangePassword(ctx.Request.Context(), user.ID, &req); err != nil {
		_ = ctx.Error(err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Password changed successfully", nil, nil)
}

func (c *Controller) GetMe(ctx *gin.Context) {
	user, ok := reqctx.CurrentUser(ctx)
	if !ok {
		_ = ctx.Error(apperrors.Unauthorized("Authentication is required"))
		return
	}

	userData := map[string]interface{}{
		"id":          user.ID,
		"email":       user.Email,
		"role":        user.Role,
		"permissions": user.Permissions,
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "User data retrieved successfully", userData, nil)
}

func (c *Controller) setAccessCookie(ctx *gin.Context, token string, maxAge int) {
	if c.cookieName == "" {
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.cookieName, token, maxAge, "/", "", c.cookieSecure, true)
}
