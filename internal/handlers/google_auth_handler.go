package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

const oauthStateCookie = "oauth_state"

type GoogleAuthHandler struct {
	googleAuthService *services.GoogleAuthService
	googleOauthConfig *oauth2.Config
	auth              *AuthHandler
}

func NewGoogleAuthHandler(googleAuthService *services.GoogleAuthService, oauthConfig *oauth2.Config, auth *AuthHandler) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		googleAuthService: googleAuthService,
		googleOauthConfig: oauthConfig,
		auth:              auth,
	}
}

func (h *GoogleAuthHandler) Login(c *gin.Context) {
	state, err := utils.GenerateOAuthState()
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to generate state")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.auth.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOauthConfig.AuthCodeURL(state))
}

// Callback checks the state cookie against the query, exchanges the code
// and signs in the matching existing user.
func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	queryState := c.Query("state")
	if queryState == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing state parameter")
		return
	}
	cookieState, err := c.Cookie(oauthStateCookie)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Missing state cookie")
		return
	}
	if queryState != cookieState {
		responses.Fail(c, http.StatusForbidden, nil, "State mismatch")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.auth.secureCookie, true)

	code := c.Query("code")
	if code == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing code")
		return
	}

	ctx := c.Request.Context()
	token, err := h.googleOauthConfig.Exchange(ctx, code)
	if err != nil {
		responses.Fail(c, http.StatusUnauthorized, err, "Token exchange failed")
		return
	}

	res, err := h.googleAuthService.Callback(ctx, h.googleOauthConfig.Client(ctx, token))
	if err != nil {
		responses.Error(c, err, "Failed to login")
		return
	}

	h.auth.setRefreshCookie(c, res.Tokens.RefreshToken, RefreshTokenMaxAge)
	responses.Success(c, http.StatusOK, gin.H{
		"access_token": res.Tokens.AccessToken,
		"user":         res.User,
	}, "User Login Successfully!")
}
