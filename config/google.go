package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleConfig wraps the OAuth flow for the /auth/google route.
type GoogleConfig struct {
	oauth *oauth2.Config
}

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// NewGoogleConfig returns nil when the OAuth credentials are not configured;
// the Google login route then responds 503 instead of the server refusing
// to boot.
func NewGoogleConfig() *GoogleConfig {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil
	}

	return &GoogleConfig{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (g *GoogleConfig) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.oauth.Exchange(ctx, code)
}

// VerifyIDToken validates an id_token against Google's tokeninfo endpoint
// and returns the identity it asserts.
func (g *GoogleConfig) VerifyIDToken(idToken string) (*GoogleUserInfo, error) {
	return fetchGoogleIdentity("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken))
}

// GetUserInfo resolves an access token to the account it belongs to.
func (g *GoogleConfig) GetUserInfo(accessToken string) (*GoogleUserInfo, error) {
	return fetchGoogleIdentity("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(accessToken))
}

func fetchGoogleIdentity(endpoint string) (*GoogleUserInfo, error) {
	resp, err := http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("google identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google identity request rejected: %s", resp.Status)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding google identity: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google identity has no email")
	}
	return &info, nil
}
