package gcal

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/aryanma11ick/Neura/internal/database"
)

// OAuthScopes lists the Calendar access the assistant requests.
var OAuthScopes = []string{
	calendar.CalendarScope,
	calendar.CalendarReadonlyScope,
}

// LoadOAuthConfig loads the OAuth2 client configuration from the environment
// or a credentials file and pins the redirect URL used by the linking flow.
func LoadOAuthConfig(credentialsFile, redirectURL string) (*oauth2.Config, error) {
	// Environment variable first (useful for container deployments)
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credJSON != "" {
		config, err := google.ConfigFromJSON([]byte(credJSON), OAuthScopes...)
		if err == nil {
			config.RedirectURL = redirectURL
			return config, nil
		}
	}

	if credentialsFile != "" {
		if config, err := loadConfigFromFile(credentialsFile, redirectURL); err == nil {
			return config, nil
		}
	}

	if config, err := loadConfigFromFile("./credentials.json", redirectURL); err == nil {
		return config, nil
	}

	return nil, fmt.Errorf("no credentials found - provide credentials.json or set GOOGLE_CREDENTIALS_JSON")
}

func loadConfigFromFile(path, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(data, OAuthScopes...)
	if err != nil {
		return nil, err
	}

	config.RedirectURL = redirectURL
	return config, nil
}

// CredentialFromToken builds the stored credential record for an exchanged
// OAuth token.
func CredentialFromToken(config *oauth2.Config, token *oauth2.Token) *database.Credential {
	return &database.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenURI:     config.Endpoint.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       OAuthScopes,
		Expiry:       token.Expiry,
	}
}

func tokenFromCredential(cred *database.Credential) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       cred.Expiry,
	}
}

// expiryLeeway refreshes tokens slightly before their declared expiry.
const expiryLeeway = time.Minute
