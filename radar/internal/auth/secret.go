package auth

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/pelletier/go-toml/v2"
	"google.golang.org/api/option"
)

// SecretScheme prefixes credential locations held in GCP Secret Manager, e.g.
// gcpsecret://projects/my-project/secrets/radar/versions/latest.
const SecretScheme = "gcpsecret://"

// IsSecretRef reports whether location names a Secret Manager secret version.
func IsSecretRef(location string) bool {
	return strings.HasPrefix(location, SecretScheme)
}

// LoadSecretCredentials reads a TOML credentials document from the secret
// version named by ref. Options are passed to the Secret Manager client.
func LoadSecretCredentials(ctx context.Context, ref string, options ...option.ClientOption) (Credentials, error) {
	name := strings.TrimPrefix(ref, SecretScheme)
	if !strings.HasPrefix(name, "projects/") || !strings.Contains(name, "/secrets/") {
		return Credentials{}, fmt.Errorf("auth: invalid secret reference %q", ref)
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}

	client, err := secretmanager.NewClient(ctx, options...)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: secret manager client: %w", err)
	}
	defer client.Close()

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return Credentials{}, fmt.Errorf("auth: access %s: %w", name, err)
	}
	var creds Credentials
	if err := toml.Unmarshal(result.GetPayload().GetData(), &creds); err != nil {
		return Credentials{}, fmt.Errorf("auth: parse secret %s: %w", name, err)
	}
	return creds, creds.Validate()
}
