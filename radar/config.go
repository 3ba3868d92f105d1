package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/mirror"
	"radar.pub/radar/internal/service"
	"radar.pub/radar/internal/transport"
)

// Config holds information that controls the behaviour of radar.
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	APIBaseURL       string        `yaml:"api_base_url"`
	DeviceID         string        `yaml:"device_id"`
	Proxy            string        `yaml:"proxy"`
	Timeout          time.Duration `yaml:"timeout"`
	RateLimit        float64       `yaml:"rate_limit"`
	RateBurst        int           `yaml:"rate_burst"`
	CacheDir         string        `yaml:"cache_dir"`
	Format           string        `yaml:"format"`
	IfExists         string        `yaml:"if_exists"`
	WorldConcurrency int           `yaml:"world_concurrency"`
	CredentialsPath  string        `yaml:"credentials"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	LoginURL         string        `yaml:"login_url"`

	// PubSubTopic, when set, receives an event for every table written.
	PubSubProject      string `yaml:"pubsub_project"`
	PubSubTopic        string `yaml:"pubsub_topic"`
	PubSubSubscription string `yaml:"pubsub_subscription"`

	// S3Bucket, when set, receives a copy of every table written.
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	cfg := Config{
		BaseURL:          service.DefaultBaseURL,
		APIBaseURL:       service.DefaultAPIBaseURL,
		Timeout:          30 * time.Second,
		CacheDir:         "radar-cache",
		Format:           cache.Parquet.String(),
		IfExists:         cache.Overwrite.String(),
		WorldConcurrency: service.DefaultWorldConcurrency,
	}
	if dir, err := os.UserCacheDir(); err == nil {
		cfg.CacheDir = filepath.Join(dir, "radar")
	}
	if path, err := auth.DefaultCredentialsPath(); err == nil {
		cfg.CredentialsPath = path
	}
	return cfg
}

// LoadConfig applies the YAML file at path, if any, over the defaults and
// then every option in order. A missing file is not an error.
func LoadConfig(path string, options ...func(*Config)) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
			}
		}
	}
	for _, opt := range options {
		opt(&cfg)
	}
	return &cfg, nil
}

// ConfigureFromEnv sets config values from the environment.
func ConfigureFromEnv() func(*Config) {
	return func(cfg *Config) {
		setString(&cfg.BaseURL, EnvBaseURL)
		setString(&cfg.APIBaseURL, EnvAPIBaseURL)
		setString(&cfg.DeviceID, EnvDeviceID)
		setString(&cfg.Proxy, EnvProxy)
		setString(&cfg.CacheDir, EnvCacheDir)
		setString(&cfg.CredentialsPath, EnvCredentialsPath)
		setString(&cfg.MetricsAddr, EnvMetricsAddr)
		setString(&cfg.PubSubProject, EnvPubSubProject)
		setString(&cfg.PubSubTopic, EnvPubSubTopic)
		setString(&cfg.S3Bucket, EnvS3Bucket)
		if v, ok := lookupInt(EnvTimeoutSeconds); ok {
			cfg.Timeout = time.Duration(v) * time.Second
		}
		if v, ok := lookupInt(EnvWorldConcurrency); ok {
			cfg.WorldConcurrency = v
		}
	}
}

func lookupInt(env EnvInteger) (int, bool) {
	v, ok, err := env.Lookup()
	if err != nil {
		slog.Warn("ignoring invalid configuration", "env_var", env.Key, "error", err)
	}
	return v, ok
}

func setString(dst *string, env EnvString) {
	if v, ok := env.Lookup(); ok {
		*dst = v
	}
}

// WriteOptions parses the configured cache format and collision policy.
func (cfg *Config) WriteOptions() (cache.WriteOptions, error) {
	format, err := cache.ParseFormat(cfg.Format)
	if err != nil {
		return cache.WriteOptions{}, err
	}
	ifExists, err := cache.ParseIfExists(cfg.IfExists)
	if err != nil {
		return cache.WriteOptions{}, err
	}
	return cache.WriteOptions{Format: format, IfExists: ifExists}, nil
}

// Mirror returns the S3 mirror config, or false when mirroring is off.
func (cfg *Config) Mirror() (mirror.Config, bool) {
	if cfg.S3Bucket == "" {
		return mirror.Config{}, false
	}
	return mirror.Config{
		Bucket:   cfg.S3Bucket,
		Prefix:   cfg.S3Prefix,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	}, true
}

// Cache opens the configured cache directory.
func (cfg *Config) Cache() *cache.Cache {
	return cache.New(cfg.CacheDir)
}

// Credentials resolves credentials from the environment, then the credentials
// file or Secret Manager secret.
func (cfg *Config) Credentials(ctx context.Context) (auth.Credentials, error) {
	if !auth.IsSecretRef(cfg.CredentialsPath) {
		return auth.ResolveCredentials(os.Getenv, cfg.CredentialsPath)
	}
	if creds := auth.CredentialsFromEnv(os.Getenv); !creds.IsZero() {
		return creds, creds.Validate()
	}
	return auth.LoadSecretCredentials(ctx, cfg.CredentialsPath)
}

// NewClient builds a provider client from the configuration. Stream clients
// have no request timeout.
func (cfg *Config) NewClient(ctx context.Context, stream bool) (*service.Client, error) {
	timeout := cfg.Timeout
	if stream {
		timeout = 0
	}
	hc, err := transport.NewHTTPClient(transport.HTTPConfig{
		Timeout: timeout,
		Proxy:   cfg.Proxy,
	})
	if err != nil {
		return nil, err
	}
	creds, err := cfg.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	options := []service.Option{
		service.WithBaseURL(cfg.BaseURL),
		service.WithAPIBaseURL(cfg.APIBaseURL),
		service.WithHTTPClient(hc),
		service.WithDeviceID(cfg.DeviceID),
	}
	if !creds.IsZero() {
		options = append(options, service.WithAuth(cfg.authProvider(creds, hc)))
	}
	if cfg.RateLimit > 0 {
		options = append(options, service.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	return service.New(options...)
}

func (cfg *Config) authProvider(creds auth.Credentials, hc *http.Client) auth.Provider {
	var options []auth.Option
	if cfg.LoginURL != "" {
		options = append(options, auth.WithLoginURL(cfg.LoginURL))
	}
	return auth.NewProvider(creds, hc, options...)
}
