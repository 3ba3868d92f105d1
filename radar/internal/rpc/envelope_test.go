package rpc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/pb"
)

func TestBuildEnvelope(t *testing.T) {
	msg := &pb.TopFlightsRequest{Limit: 10}
	env, err := BuildEnvelope(MethodTopFlights, msg, nil, "web-test")
	require.NoError(t, err)

	assert.Equal(t, "TopFlights", env.Method)
	assert.Equal(t, "/fr24.feed.api.v1.Feed/TopFlights", env.Path)
	assert.Equal(t, []byte{0, 0, 0, 0, 2, 8, 10}, env.Body)
	assert.Equal(t, "web-test", env.Header.Get("fr24-device-id"))
	assert.Equal(t, Platform, env.Header.Get("fr24-platform"))
	assert.Equal(t, "1", env.Header.Get("x-grpc-web"))
	assert.Equal(t, ContentType, env.Header.Get("Content-Type"))
	assert.Equal(t, UserAgent, env.Header.Get("x-user-agent"))
	assert.Empty(t, env.Header.Values("Authorization"))

	var decoded pb.TopFlightsRequest
	require.NoError(t, grpcweb.Decode(env.Body, &decoded))
	assert.Equal(t, *msg, decoded)
}

func TestBuildEnvelopeAuthorization(t *testing.T) {
	session := &auth.Session{Token: &oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}}
	env, err := BuildEnvelope(MethodLiveFeed, &pb.LiveFeedRequest{}, session, "web-test")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", env.Header.Get("Authorization"))

	env, err = BuildEnvelope(MethodLiveFeed, &pb.LiveFeedRequest{}, &auth.Session{}, "web-test")
	require.NoError(t, err)
	assert.Empty(t, env.Header.Get("Authorization"))
}

func TestBuildEnvelopeDeviceID(t *testing.T) {
	env, err := BuildEnvelope(MethodTopFlights, &pb.TopFlightsRequest{}, nil, "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^web-[0-9a-f]{32}$`), env.Header.Get("fr24-device-id"))
	assert.NotEqual(t, NewDeviceID(), NewDeviceID())
}

func TestWorldCells(t *testing.T) {
	cells := WorldCells()
	require.Len(t, cells, 56)
	assert.Equal(t, cells, WorldCells())

	var area float64
	for _, c := range cells {
		require.NoError(t, c.Validate(), c.String())
		area += (c.North - c.South) * (c.East - c.West)
	}
	assert.InDelta(t, 180.0*360.0, area, 1e-9)

	assert.Equal(t, BoundingBox{South: -90, North: -30, West: -180, East: -90}, cells[0])
	assert.Equal(t, BoundingBox{South: 60, North: 90, West: 135, East: 180}, cells[len(cells)-1])
}
