package auth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "12345",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("not-the-provider-key"))
	require.NoError(t, err)
	return tok
}

func TestTokenRedacted(t *testing.T) {
	secret := Token("hunter2")
	assert.Equal(t, RedactedToken, fmt.Sprintf("%s", secret))
	assert.Equal(t, RedactedToken, fmt.Sprintf("%v", secret))
	assert.Equal(t, RedactedToken, fmt.Sprintf("%#v", secret))
	assert.Equal(t, "hunter2", string(secret))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("creds", "password", secret)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestCredentialsFromEnv(t *testing.T) {
	env := map[string]string{
		EnvUsername:        "pilot@example.com",
		EnvPassword:        "pw",
		EnvSubscriptionKey: "sub",
	}
	creds := CredentialsFromEnv(func(k string) string { return env[k] })
	assert.Equal(t, Credentials{
		Username:        "pilot@example.com",
		Password:        "pw",
		SubscriptionKey: "sub",
	}, creds)
	assert.NoError(t, creds.Validate())
	assert.False(t, creds.IsZero())
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
subscription_key = "sub-key"
token = "tok"
`), 0o600))

	creds, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, Token("sub-key"), creds.SubscriptionKey)
	assert.Equal(t, Token("tok"), creds.AccessToken)

	require.NoError(t, os.WriteFile(path, []byte(`username = "only-user"`), 0o600))
	_, err = LoadCredentials(path)
	assert.ErrorIs(t, err, ErrIncompleteCredentials)

	require.NoError(t, os.WriteFile(path, []byte(`username = `), 0o600))
	_, err = LoadCredentials(path)
	assert.Error(t, err)
}

func TestSaveCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar", "credentials.toml")
	want := Credentials{SubscriptionKey: "sub-key", AccessToken: "tok"}
	require.NoError(t, SaveCredentials(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), RedactedToken)
	assert.NotContains(t, string(data), "username")

	got, err := LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	require.NoError(t, os.WriteFile(path, []byte(`subscription_key = "from-file"`), 0o600))

	noEnv := func(string) string { return "" }
	creds, err := ResolveCredentials(noEnv, path)
	require.NoError(t, err)
	assert.Equal(t, Token("from-file"), creds.SubscriptionKey)

	withEnv := func(k string) string {
		if k == EnvSubscriptionKey {
			return "from-env"
		}
		return ""
	}
	creds, err = ResolveCredentials(withEnv, path)
	require.NoError(t, err)
	assert.Equal(t, Token("from-env"), creds.SubscriptionKey)

	creds, err = ResolveCredentials(noEnv, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.True(t, creds.IsZero())
}

func TestAnonymous(t *testing.T) {
	sess, err := Anonymous().Session(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.Empty(t, sess.Authorization())

	sess, err = NewProvider(Credentials{SubscriptionKey: "sub"}, nil).Session(context.Background())
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.Equal(t, Token("sub"), sess.SubscriptionKey)
}

func TestStaticToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, exp)

	p := NewProvider(Credentials{AccessToken: Token(raw), SubscriptionKey: "sub"}, nil)
	sess, err := p.Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "Bearer "+raw, sess.Authorization())
	assert.True(t, exp.Equal(sess.Token.Expiry))
	assert.Equal(t, Token("sub"), sess.SubscriptionKey)
}

func TestStaticTokenExpired(t *testing.T) {
	raw := signedToken(t, time.Now().Add(-time.Minute))

	_, err := NewProvider(Credentials{AccessToken: Token(raw)}, nil).Session(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestStaticOpaqueTokenNeverExpires(t *testing.T) {
	sess, err := NewProvider(Credentials{AccessToken: "opaque"}, nil).Session(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Token.Expiry.IsZero())
}

func TestLogin(t *testing.T) {
	var calls atomic.Int32
	access := signedToken(t, time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("email") != "pilot@example.com" || r.PostForm.Get("password") != "pw" {
			fmt.Fprint(w, `{"success":false,"message":"Wrong credentials"}`)
			return
		}
		fmt.Fprintf(w, `{"success":true,"status":"success","userData":{"accessToken":%q,"subscriptionKey":"sub-from-login","accountType":"Gold"}}`, access)
	}))
	defer srv.Close()

	p := NewProvider(Credentials{Username: "pilot@example.com", Password: "pw"}, srv.Client(), WithLoginURL(srv.URL))
	for range 3 {
		sess, err := p.Session(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+access, sess.Authorization())
		assert.Equal(t, Token("sub-from-login"), sess.SubscriptionKey)
	}
	assert.Equal(t, int32(1), calls.Load(), "token should be reused until it expires")

	bad := NewProvider(Credentials{Username: "pilot@example.com", Password: "wrong"}, srv.Client(), WithLoginURL(srv.URL))
	_, err := bad.Session(context.Background())
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.ErrorContains(t, err, "Wrong credentials")
}

func TestLoginHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewProvider(Credentials{Username: "u", Password: "p"}, srv.Client(), WithLoginURL(srv.URL))
	_, err := p.Session(context.Background())
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestIncompleteCredentials(t *testing.T) {
	_, err := NewProvider(Credentials{Username: "u"}, nil).Session(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteCredentials)
}
