// Package oauth talks to the external identity provider: it builds the
// authorization redirect, exchanges the callback code for a token, and reads
// the user's verified profile.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	ErrExchange   = errors.New("authorization code exchange failed")
	ErrUserInfo   = errors.New("user info request failed")
	ErrUnverified = errors.New("identity provider did not return a verified email")
)

// Config is the client registration at the identity provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
}

// Profile is the subset of the provider's user info we use.
type Profile struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewProvider(c Config) *Provider {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "email", "profile"}
	}
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  c.AuthURL,
				TokenURL: c.TokenURL,
			},
			Scopes: scopes,
		},
		userInfoURL: c.UserInfoURL,
	}
}

// AuthCodeURL is where the browser is sent to log in.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Identify exchanges the callback code and fetches the profile. The profile
// must carry an email, and a verified one when the provider reports
// verification.
func (p *Provider) Identify(ctx context.Context, code string) (Profile, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Profile{}, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode)
	}

	var prof Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&prof); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	if prof.Email == "" || (prof.EmailVerified != nil && !*prof.EmailVerified) {
		return Profile{}, ErrUnverified
	}
	return prof, nil
}
