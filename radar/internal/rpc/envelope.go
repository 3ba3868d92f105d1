package rpc

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/transport"
)

const (
	Platform    = "web-25.316.1001"
	UserAgent   = "grpc-web-javascript/0.1"
	ContentType = "application/grpc-web+proto"
	Origin      = "https://www.flightradar24.com"
)

// NewDeviceID returns a random device id in the form the web client uses.
func NewDeviceID() string {
	id := uuid.New()
	return "web-" + hex.EncodeToString(id[:])
}

// Header returns the headers sent with every request. A nil or anonymous
// session omits authorization.
func Header(session *auth.Session, deviceID string) http.Header {
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Origin", Origin)
	h.Set("Referer", Origin+"/")
	h.Set("fr24-device-id", deviceID)
	h.Set("fr24-platform", Platform)
	h.Set("x-grpc-web", "1")
	h.Set("x-user-agent", UserAgent)
	h.Set("Content-Type", ContentType)
	if session.Authenticated() {
		h.Set("Authorization", session.Authorization())
	}
	return h
}

// BuildEnvelope frames msg for method. An empty deviceID is replaced with a
// fresh one.
func BuildEnvelope(method Method, msg grpcweb.Message, session *auth.Session, deviceID string) (transport.Envelope, error) {
	body, err := grpcweb.Encode(msg)
	if err != nil {
		return transport.Envelope{}, fmt.Errorf("encode %s request: %w", method, err)
	}
	if deviceID == "" {
		deviceID = NewDeviceID()
	}
	return transport.Envelope{
		Method: string(method),
		Path:   method.Path(),
		Header: Header(session, deviceID),
		Body:   body,
	}, nil
}
