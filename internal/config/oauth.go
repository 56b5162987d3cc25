package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig returns nil when Google sign-in is not configured.
func (c *Config) OAuthConfig() *oauth2.Config {
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return nil
	}
	scopes := []string{"openid", "email", "profile"}
	return &oauth2.Config{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}
