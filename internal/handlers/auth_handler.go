package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complexcare/internal/middlewares"
	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

const (
	RefreshTokenCookieName = "refresh_token"
	RefreshTokenMaxAge     = int(utils.RefreshTokenDuration / time.Second)
)

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshTokenCookieName, token, maxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		responses.Error(c, err, "Failed to login")
		return
	}

	h.setRefreshCookie(c, res.Tokens.RefreshToken, RefreshTokenMaxAge)
	responses.Success(c, http.StatusOK, gin.H{
		"access_token": res.Tokens.AccessToken,
		"user":         res.User,
	}, "User Login Successfully!")
}

// Refresh reads the refresh token from the HttpOnly cookie, or from the
// body for non-browser clients, and rotates it.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookieName)
	if err != nil || refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.ShouldBindJSON(&body)
		refreshToken = body.RefreshToken
	}
	if refreshToken == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing refresh token")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.setRefreshCookie(c, "", -1)
		responses.Error(c, err, "Invalid or expired refresh token")
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, RefreshTokenMaxAge)
	responses.Success(c, http.StatusOK, gin.H{"access_token": pair.AccessToken}, "Access token refreshed successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middlewares.Claims(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		responses.Error(c, err, "Could not revoke token")
		return
	}
	h.setRefreshCookie(c, "", -1)
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middlewares.Claims(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Invalid token subject")
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve user")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}
