package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleAuthService signs in existing users with a verified Google account.
// Accounts are never created from a Google profile.
type GoogleAuthService struct {
	users       UserStore
	auth        *AuthService
	userInfoURL string
	log         *zap.Logger
}

func NewGoogleAuthService(users UserStore, auth *AuthService, log *zap.Logger) *GoogleAuthService {
	return &GoogleAuthService{
		users:       users,
		auth:        auth,
		userInfoURL: googleUserInfoURL,
		log:         log,
	}
}

// Callback fetches the Google profile with client, which must carry the
// OAuth token, and logs the matching user in.
func (s *GoogleAuthService) Callback(ctx context.Context, client *http.Client) (*LoginResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	body, status, err := doRequest(client, req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get user info: %w", ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo returned %d", ErrUnauthorized, status)
	}

	profile := gjson.ParseBytes(body)
	email := profile.Get("email").String()
	if email == "" || !profile.Get("verified_email").Bool() {
		return nil, fmt.Errorf("%w: email is not verified by Google", ErrUnauthorized)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user == nil {
		s.log.Info("google sign-in for unknown account", zap.String("email", email))
		return nil, fmt.Errorf("%w: no account for %s", ErrUnauthorized, email)
	}
	return s.auth.LoginUser(ctx, user)
}
