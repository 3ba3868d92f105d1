package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// RedactedToken is the value returned by calling String() on a Token.
const RedactedToken = "--REDACTED--"

// Token is a secret string that redacts itself when printed.
// Convert it to a string explicitly to use its value.
type Token string

func (Token) String() string {
	return RedactedToken
}

// GoString keeps %#v from printing the secret.
func (Token) GoString() string {
	return RedactedToken
}

// Environment variables read by CredentialsFromEnv.
const (
	EnvUsername        = "RADAR_USERNAME"
	EnvPassword        = "RADAR_PASSWORD"
	EnvSubscriptionKey = "RADAR_SUBSCRIPTION_KEY"
	EnvToken           = "RADAR_TOKEN"
)

// Credentials are either a username/password pair or a subscription key with
// an optional bearer token.
type Credentials struct {
	Username        string `toml:"username"`
	Password        Token  `toml:"password"`
	SubscriptionKey Token  `toml:"subscription_key"`
	AccessToken     Token  `toml:"token"`
}

// IsZero reports whether no credential is configured.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

// Validate checks that a username/password pair is complete.
func (c Credentials) Validate() error {
	if (c.Username == "") != (c.Password == "") {
		return ErrIncompleteCredentials
	}
	return nil
}

// CredentialsFromEnv reads credentials using getenv (usually os.Getenv).
func CredentialsFromEnv(getenv func(string) string) Credentials {
	return Credentials{
		Username:        getenv(EnvUsername),
		Password:        Token(getenv(EnvPassword)),
		SubscriptionKey: Token(getenv(EnvSubscriptionKey)),
		AccessToken:     Token(getenv(EnvToken)),
	}
}

// DefaultCredentialsPath is credentials.toml in the user's radar config directory.
func DefaultCredentialsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("auth: locate config dir: %w", err)
	}
	return filepath.Join(dir, "radar", "credentials.toml"), nil
}

// LoadCredentials reads a TOML credentials file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: read credentials: %w", err)
	}
	var creds Credentials
	if err := toml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("auth: parse credentials %s: %w", path, err)
	}
	return creds, creds.Validate()
}

// ResolveCredentials prefers the environment and falls back to the file at
// path. A missing file yields empty credentials.
func ResolveCredentials(getenv func(string) string, path string) (Credentials, error) {
	if creds := CredentialsFromEnv(getenv); !creds.IsZero() {
		return creds, creds.Validate()
	}
	if path == "" {
		return Credentials{}, nil
	}
	creds, err := LoadCredentials(path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	return creds, err
}

// SaveCredentials writes creds to a TOML file readable only by the owner,
// creating its directory if needed.
func SaveCredentials(path string, creds Credentials) error {
	// Token formats as redacted, so the file is written from plain strings.
	data, err := toml.Marshal(struct {
		Username        string `toml:"username,omitempty"`
		Password        string `toml:"password,omitempty"`
		SubscriptionKey string `toml:"subscription_key,omitempty"`
		AccessToken     string `toml:"token,omitempty"`
	}{
		Username:        creds.Username,
		Password:        string(creds.Password),
		SubscriptionKey: string(creds.SubscriptionKey),
		AccessToken:     string(creds.AccessToken),
	})
	if err != nil {
		return fmt.Errorf("auth: encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("auth: create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("auth: write credentials: %w", err)
	}
	return nil
}
