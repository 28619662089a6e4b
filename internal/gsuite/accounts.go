package gsuite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/MattHurst33/replit-calander-sub000/pkg/grooming"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gopkg.in/yaml.v3"
)

// AccountEntry connects one engine user to a Google account.
type AccountEntry struct {
	UserID          string `json:"user_id" yaml:"user_id"`
	CredentialsJSON string `json:"credentials_json" yaml:"credentials_json"` // path to OAuth client credentials
	TokenJSON       string `json:"token_json" yaml:"token_json"`             // path to the stored user token
	CalendarID      string `json:"calendar_id" yaml:"calendar_id"`           // defaults to "primary"
}

// Accounts resolves per-user Google credentials from the accounts config
// file.
type Accounts struct {
	entries map[string]AccountEntry
	log     *logrus.Logger
}

// LoadAccounts reads the YAML accounts configuration file
func LoadAccounts(path string, log *logrus.Logger) (*Accounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var config struct {
		Accounts []AccountEntry `yaml:"accounts"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	entries := make(map[string]AccountEntry, len(config.Accounts))
	for _, entry := range config.Accounts {
		if entry.CalendarID == "" {
			entry.CalendarID = "primary"
		}
		entries[entry.UserID] = entry
	}

	return &Accounts{entries: entries, log: log}, nil
}

// CalendarID returns the calendar the user's meetings live on.
func (a *Accounts) CalendarID(userID string) (string, error) {
	entry, exists := a.entries[userID]
	if !exists {
		return "", grooming.ErrNoCredential
	}
	return entry.CalendarID, nil
}

// TokenSource builds a refreshing oauth2 token source for the user, scoped
// to the requested APIs. Returns grooming.ErrNoCredential when the user has
// no connected account.
func (a *Accounts) TokenSource(ctx context.Context, userID string, scopes ...string) (oauth2.TokenSource, error) {
	entry, exists := a.entries[userID]
	if !exists {
		return nil, grooming.ErrNoCredential
	}

	credentialsJSON, err := os.ReadFile(entry.CredentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	tokenJSON, err := os.ReadFile(entry.TokenJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token JSON: %w", err)
	}

	config, err := google.ConfigFromJSON(credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	// Wrap the token source so refreshed tokens are written back to disk
	return &tokenSavingSource{
		source:    config.TokenSource(ctx, &token),
		tokenPath: entry.TokenJSON,
		log:       a.log,
	}, nil
}

// tokenSavingSource wraps an oauth2.TokenSource and automatically saves
// refreshed tokens to disk
type tokenSavingSource struct {
	source    oauth2.TokenSource
	tokenPath string
	lastToken *oauth2.Token
	log       *logrus.Logger
}

// Token returns a valid token, refreshing if necessary and saving to disk
func (t *tokenSavingSource) Token() (*oauth2.Token, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}

	if t.lastToken == nil || t.lastToken.AccessToken != token.AccessToken {
		if saveErr := saveToken(t.tokenPath, token); saveErr != nil {
			t.log.WithError(saveErr).Warn("failed to save refreshed token")
		}
		t.lastToken = token
	}

	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
