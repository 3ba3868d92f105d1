package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

var (
	// EnvDebugLogging will emit verbose debug logs to help troubleshoot issues.
	// EnvJSONLogging will emit logs in JSON format for easier parsing by log aggregators.
	EnvDebugLogging = EnvBool{"RADAR_DEBUG_LOGGING"}
	EnvJSONLogging  = EnvBool{"RADAR_JSON_LOGGING"}

	// EnvConfigPath points at a YAML config file.
	// EnvCacheDir sets the root of the tabular cache.
	// EnvCredentialsPath points at a TOML credentials file.
	EnvConfigPath      = EnvString{"RADAR_CONFIG", ""}
	EnvCacheDir        = EnvString{"RADAR_CACHE_DIR", ""}
	EnvCredentialsPath = EnvString{"RADAR_CREDENTIALS", ""}

	// EnvBaseURL overrides the gRPC-Web host.
	// EnvAPIBaseURL overrides the JSON API prefix.
	// EnvDeviceID pins the device id sent with every request.
	// EnvProxy routes requests through an http(s) or socks5 proxy.
	EnvBaseURL    = EnvString{"RADAR_BASE_URL", ""}
	EnvAPIBaseURL = EnvString{"RADAR_API_BASE_URL", ""}
	EnvDeviceID   = EnvString{"RADAR_DEVICE_ID", ""}
	EnvProxy      = EnvString{"RADAR_PROXY", ""}

	// EnvTimeoutSeconds bounds each unary request.
	// EnvWorldConcurrency bounds the number of cells fetched at once.
	EnvTimeoutSeconds   = EnvInteger{"RADAR_TIMEOUT_SECONDS", 0}
	EnvWorldConcurrency = EnvInteger{"RADAR_WORLD_CONCURRENCY", 0}

	// EnvMetricsAddr sets the address (ip:port) to serve prometheus metrics on.
	EnvMetricsAddr = EnvString{"RADAR_METRICS_ADDR", ""}

	// EnvPubSubProject and EnvPubSubTopic announce written tables on Pub/Sub.
	EnvPubSubProject = EnvString{"RADAR_PUBSUB_PROJECT", ""}
	EnvPubSubTopic   = EnvString{"RADAR_PUBSUB_TOPIC", ""}

	// EnvS3Bucket mirrors written tables to this bucket.
	EnvS3Bucket = EnvString{"RADAR_S3_BUCKET", ""}
)

// EnvBool represents a boolean that is configured using environment variables.
// Any non-empty value for the variable sets it to true, however the common format is VAR=1.
type EnvBool struct {
	Key string
}

func (env EnvBool) String() string {
	return fmt.Sprintf("%t", env.Bool())
}

// Bool is true if any non-empty value is set.
func (env EnvBool) Bool() bool {
	return os.Getenv(env.Key) != ""
}

func (env EnvBool) IsSet() bool {
	return env.Bool()
}

func (env EnvBool) IsUnset() bool {
	return !env.Bool()
}

// EnvString represents a string that is configured using environment variables.
type EnvString struct {
	Key     string
	Default string
}

// String parsed from the environment variable, or the default.
func (env EnvString) String() string {
	if val, ok := env.Lookup(); ok {
		return val
	}
	return env.Default
}

// Lookup returns the value and whether the variable is set to a non-empty value.
func (env EnvString) Lookup() (string, bool) {
	val := os.Getenv(env.Key)
	return val, val != ""
}

// EnvInteger represents an integer that is configured using environment variables.
type EnvInteger struct {
	Key     string
	Default int
}

// Int parsed from the environment variable. Invalid values fall back to the
// default with a warning.
func (env EnvInteger) Int() int {
	val, ok, err := env.Lookup()
	if err != nil {
		slog.Warn("invalid configuration, using default value", "env_var", env.Key, "type", "int", "default", env.Default, "error", err)
		return env.Default
	}
	if !ok {
		return env.Default
	}
	return val
}

// Lookup parses the variable, reporting whether it was set.
func (env EnvInteger) Lookup() (int, bool, error) {
	envVar := os.Getenv(env.Key)
	if envVar == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(envVar)
	if err != nil {
		return 0, false, fmt.Errorf("invalid integer value (%q) provided for %s: %w", envVar, env.Key, err)
	}
	return val, true, nil
}
