package grpcweb

import "errors"

var (
	// ErrEmptyFrame occurs when a zero-length buffer is decoded.
	ErrEmptyFrame = errors.New("grpcweb: empty frame")

	// ErrUnsupportedCompression occurs when a frame sets the compressed flag.
	ErrUnsupportedCompression = errors.New("grpcweb: compressed frames are not supported")

	// ErrMalformedFrame occurs when a frame header is invalid or the payload is truncated.
	ErrMalformedFrame = errors.New("grpcweb: malformed frame")

	// ErrEmptyPayload occurs when a frame declares a zero-length payload.
	ErrEmptyPayload = errors.New("grpcweb: empty payload")
)
