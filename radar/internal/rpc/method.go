// Package rpc builds provider requests: one immutable params type per
// endpoint, the protobuf message it maps to, the request envelope and the
// cache key identifying its result.
package rpc

import (
	"time"

	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/grpcweb"
)

// Service is the gRPC service every Method belongs to.
const Service = "fr24.feed.api.v1.Feed"

// Method is a gRPC method of Service.
type Method string

const (
	MethodLiveFeed          Method = "LiveFeed"
	MethodPlayback          Method = "Playback"
	MethodNearestFlights    Method = "NearestFlights"
	MethodLiveFlightsStatus Method = "LiveFlightsStatus"
	MethodFetchSearchIndex  Method = "FetchSearchIndex"
	MethodFlightDetails     Method = "FlightDetails"
	MethodPlaybackFlight    Method = "PlaybackFlight"
	MethodTopFlights        Method = "TopFlights"
	MethodFollowFlight      Method = "FollowFlight"
)

// Path is the request path of m.
func (m Method) Path() string {
	return "/" + Service + "/" + string(m)
}

func (m Method) String() string { return string(m) }

// Params is implemented by every request params type Q. P is the protobuf
// request it maps to.
type Params[Q any, P grpcweb.Message] interface {
	Method() Method
	// Resolve returns a copy with symbolic timestamps replaced by now.
	// Params without a timestamp return themselves.
	Resolve(now time.Time) Q
	// Proto builds the request message. It is pure: equal params always
	// produce equal messages.
	Proto() (P, error)
	// CacheKey identifies the result of a request made at fetchedAt (Unix
	// seconds). Only identifying fields contribute to the key.
	CacheKey(fetchedAt int64) (cache.Key, error)
}
