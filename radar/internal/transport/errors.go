package transport

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// ErrResponseTooLarge occurs when a unary response body exceeds the read limit.
var ErrResponseTooLarge = errors.New("transport: response too large")

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 512

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Method     string
	StatusCode int
	// Code is the gRPC status equivalent to StatusCode.
	Code codes.Code
	// Body is a prefix of the response body.
	Body []byte
}

func (err *StatusError) Error() string {
	msg := fmt.Sprintf("transport: %s: http status %d (%s)", err.Method, err.StatusCode, err.Code)
	if len(err.Body) > 0 {
		msg += ": " + string(err.Body)
	}
	return msg
}

// Temporary reports whether retrying the request may succeed.
func (err *StatusError) Temporary() bool {
	return err.Code == codes.Unavailable || err.Code == codes.ResourceExhausted
}

// CodeForHTTPStatus maps an HTTP status to the gRPC code a gRPC-Web client
// reports for it.
func CodeForHTTPStatus(status int) codes.Code {
	switch {
	case status >= 200 && status < 300:
		return codes.OK
	}
	switch status {
	case http.StatusBadRequest:
		return codes.Internal
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.Unimplemented
	case http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return codes.Unavailable
	}
	return codes.Unknown
}
