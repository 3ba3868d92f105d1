package auth

import "errors"

var (
	// ErrIncompleteCredentials occurs when only half of a username/password pair is configured.
	ErrIncompleteCredentials = errors.New("auth: username and password must be set together")

	// ErrLoginFailed occurs when the provider rejects a username/password login.
	ErrLoginFailed = errors.New("auth: login failed")

	// ErrTokenExpired occurs when a configured static token is past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)
