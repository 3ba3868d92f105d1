// Package auth resolves the optional bearer token and subscription key sent
// with provider requests.
package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// DefaultLoginURL is where username/password credentials are exchanged for a token.
const DefaultLoginURL = "https://www.flightradar24.com/user/login"

const extraSubscriptionKey = "subscription_key"

// Session is the authentication state attached to requests.
type Session struct {
	// Token is nil for anonymous sessions.
	Token           *oauth2.Token
	SubscriptionKey Token
}

// Authenticated reports whether the session carries a bearer token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != nil && s.Token.AccessToken != ""
}

// Authorization returns the authorization header value, or "" when anonymous.
func (s *Session) Authorization() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Token.Type() + " " + s.Token.AccessToken
}

// Provider resolves a Session. Implementations are safe for concurrent use.
type Provider interface {
	Session(ctx context.Context) (*Session, error)
}

type anonymous struct{}

func (anonymous) Session(context.Context) (*Session, error) { return &Session{}, nil }

// Anonymous returns a provider of unauthenticated sessions.
func Anonymous() Provider { return anonymous{} }

// Option configures a provider built by NewProvider.
type Option func(*provider)

func WithLoginURL(u string) Option {
	return func(p *provider) { p.loginURL = u }
}

func WithLogger(log *slog.Logger) Option {
	return func(p *provider) { p.log = log }
}

type provider struct {
	creds    Credentials
	client   *http.Client
	loginURL string
	log      *slog.Logger

	once sync.Once
	src  oauth2.TokenSource
	err  error
}

// NewProvider returns a provider for creds. Nothing is resolved until the
// first call to Session; the token is then reused until it expires and
// fetched again afterwards.
func NewProvider(creds Credentials, client *http.Client, options ...Option) Provider {
	if client == nil {
		client = http.DefaultClient
	}
	p := &provider{
		creds:    creds,
		client:   client,
		loginURL: DefaultLoginURL,
		log:      slog.Default(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *provider) init() {
	if err := p.creds.Validate(); err != nil {
		p.err = err
		return
	}
	switch {
	case p.creds.AccessToken != "":
		p.src = oauth2.ReuseTokenSource(nil, staticSource{
			token:           p.creds.AccessToken,
			subscriptionKey: p.creds.SubscriptionKey,
		})
	case p.creds.Username != "":
		p.src = oauth2.ReuseTokenSource(nil, &loginSource{
			client:   p.client,
			url:      p.loginURL,
			username: p.creds.Username,
			password: p.creds.Password,
			log:      p.log,
		})
	}
}

func (p *provider) Session(ctx context.Context) (*Session, error) {
	p.once.Do(p.init)
	if p.err != nil {
		return nil, p.err
	}
	if p.src == nil {
		return &Session{SubscriptionKey: p.creds.SubscriptionKey}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	key := p.creds.SubscriptionKey
	if v, ok := tok.Extra(extraSubscriptionKey).(string); ok && v != "" {
		key = Token(v)
	}
	return &Session{Token: tok, SubscriptionKey: key}, nil
}

// expiry reads the exp claim of a JWT without verifying its signature.
// Tokens that are not JWTs, or carry no exp, never expire.
func expiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

type staticSource struct {
	token           Token
	subscriptionKey Token
}

func (s staticSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken: string(s.token),
		TokenType:   "Bearer",
		Expiry:      expiry(string(s.token)),
	}
	if !tok.Valid() {
		return nil, fmt.Errorf("%w at %s", ErrTokenExpired, tok.Expiry.Format(time.RFC3339))
	}
	return tok, nil
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	UserData struct {
		AccessToken     string `json:"accessToken"`
		SubscriptionKey string `json:"subscriptionKey"`
		AccountType     string `json:"accountType"`
	} `json:"userData"`
}

type loginSource struct {
	client   *http.Client
	url      string
	username string
	password Token
	log      *slog.Logger
}

// Token logs in. oauth2.TokenSource carries no context, so the request is
// bounded by the http client's timeout.
func (s *loginSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"email":    {s.username},
		"password": {string(s.password)},
		"remember": {"true"},
		"type":     {"web"},
	}
	req, err := http.NewRequest(http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("auth: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("auth: read login response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: http status %d", ErrLoginFailed, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("auth: decode login response: %w", err)
	}
	if !lr.Success || lr.UserData.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, lr.Message)
	}

	tok := &oauth2.Token{
		AccessToken: lr.UserData.AccessToken,
		TokenType:   "Bearer",
		Expiry:      expiry(lr.UserData.AccessToken),
	}
	s.log.Info("auth: logged in",
		"account_type", lr.UserData.AccountType,
		"expiry", tok.Expiry,
	)
	return tok.WithExtra(map[string]any{
		extraSubscriptionKey: lr.UserData.SubscriptionKey,
	}), nil
}
