package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the portion of the Google userinfo response we care about.
// The Sub field is Google's stable account identifier — usernames and emails
// can change, Sub never does.
type GoogleUser struct {
	Sub     string `json:"id"`      // Google's account ID
	Name    string `json:"name"`    // display name, used as the initial username
	Email   string `json:"email"`   // verified email address
	Picture string `json:"picture"` // profile picture URL
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization Code
// flow: the server redirects the browser to Google's consent page, Google
// redirects back with a code, and the server exchanges the code for the
// user's profile — the ClientSecret and access token never touch the browser.
type GoogleProvider struct {
	config *oauth2.Config

	// userinfoURL is overridable in tests to point at a stub server.
	userinfoURL string
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
// callbackURL must exactly match an authorized redirect URI configured in the
// Google Cloud console, e.g. "http://localhost:8080/auth/google/callback".
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

// AuthURL returns the URL to redirect the user to for consent. The state is
// a random value stored in a short-lived cookie and verified on callback —
// the standard OAuth CSRF defence.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// Google user profile. The returned GoogleUser feeds the resolve-or-create
// flow in the auth service.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the bearer
	// token to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gUser); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}

	if gUser.Sub == "" {
		return nil, fmt.Errorf("auth: Google returned an invalid user (empty id)")
	}

	return &gUser, nil
}
