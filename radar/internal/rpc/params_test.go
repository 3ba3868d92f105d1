package rpc

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/pb"
)

var hongKong = BoundingBox{South: 22.0, North: 23.0, West: 113.5, East: 114.5}

func TestLiveFeedDefaults(t *testing.T) {
	req, err := LiveFeedParams{Bounds: hongKong}.Proto()
	require.NoError(t, err)

	assert.Equal(t, int32(DefaultLiveFeedLimit), req.Limit)
	assert.Equal(t, int32(DefaultMaxAge), req.MaxAge)
	assert.Equal(t, []string{"flight", "reg", "route", "type"}, req.FieldMask.FieldNames)
	assert.Equal(t, &pb.LocationBoundaries{North: 23, South: 22, West: 113.5, East: 114.5}, req.Bounds)
	assert.Equal(t, pb.TrafficType_ALL, req.Settings.TrafficType)
	assert.Len(t, req.Settings.Sources, 10)
	assert.Len(t, req.Settings.Services, 12)
}

func TestLiveFeedProtoIsPure(t *testing.T) {
	p := LiveFeedParams{Bounds: hongKong, Limit: 10, Fields: []pb.Field{"squawk", "reg"}}
	a, err := p.Proto()
	require.NoError(t, err)
	b, err := p.Proto()
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Proto() differs between calls (-first +second):\n%s", diff)
	}
	ab, _ := a.Marshal()
	bb, _ := b.Marshal()
	assert.Equal(t, ab, bb)
}

func resolveParams[Q Params[Q, P], P grpcweb.Message](params Q, now time.Time) Q {
	return params.Resolve(now)
}

func TestResolve(t *testing.T) {
	now := time.Unix(1700000000, 0)

	feed := LiveFeedParams{Bounds: hongKong, Limit: 10}
	assert.Equal(t, feed, resolveParams[LiveFeedParams, *pb.LiveFeedRequest](feed, now))
	top := TopFlightsParams{Limit: 5}
	assert.Equal(t, top, resolveParams[TopFlightsParams, *pb.TopFlightsRequest](top, now))

	playback := resolveParams[PlaybackFlightParams, *pb.PlaybackFlightRequest](PlaybackFlightParams{FlightID: 1}, now)
	assert.Equal(t, At(1700000000), playback.Timestamp)
	fixed := resolveParams[PlaybackFlightParams, *pb.PlaybackFlightRequest](PlaybackFlightParams{FlightID: 1, Timestamp: At(5)}, now)
	assert.Equal(t, At(5), fixed.Timestamp)

	replay := resolveParams[LiveFeedPlaybackParams, *pb.PlaybackRequest](LiveFeedPlaybackParams{LiveFeed: feed}, now)
	assert.Equal(t, At(1700000000), replay.Timestamp)
	assert.Equal(t, feed, replay.LiveFeed)
}

func TestLiveFeedFields(t *testing.T) {
	req, err := LiveFeedParams{
		Bounds: hongKong,
		Fields: []pb.Field{"SQUAWK", "reg", "squawk", " vspeed"},
	}.Proto()
	require.NoError(t, err)
	assert.Equal(t, []string{"squawk", "reg", "vspeed"}, req.FieldMask.FieldNames)

	_, err = LiveFeedParams{Bounds: hongKong, Fields: []pb.Field{"altitude"}}.Proto()
	require.ErrorIs(t, err, ErrInvalidParams)
	var enumErr *pb.UnknownEnumError
	require.ErrorAs(t, err, &enumErr)
	assert.Equal(t, "Field", enumErr.Enum)
}

func TestLiveFeedInvalid(t *testing.T) {
	tests := []struct {
		name   string
		params LiveFeedParams
	}{
		{"LimitTooLarge", LiveFeedParams{Bounds: hongKong, Limit: MaxLiveFeedLimit + 1}},
		{"NegativeLimit", LiveFeedParams{Bounds: hongKong, Limit: -1}},
		{"NegativeMaxAge", LiveFeedParams{Bounds: hongKong, MaxAge: -5}},
		{"InvertedLatitude", LiveFeedParams{Bounds: BoundingBox{South: 10, North: 5, West: 0, East: 1}}},
		{"InvertedLongitude", LiveFeedParams{Bounds: BoundingBox{South: 0, North: 1, West: 10, East: 5}}},
		{"LatitudeRange", LiveFeedParams{Bounds: BoundingBox{South: -91, North: 0, West: 0, East: 1}}},
		{"LongitudeRange", LiveFeedParams{Bounds: BoundingBox{South: 0, North: 1, West: 0, East: 181}}},
		{"EmptyBox", LiveFeedParams{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.params.Proto()
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestLiveFeedPlayback(t *testing.T) {
	p := LiveFeedPlaybackParams{
		LiveFeed:  LiveFeedParams{Bounds: hongKong},
		Timestamp: At(1700000000),
		HFreq:     true,
	}
	req, err := p.Proto()
	require.NoError(t, err)
	assert.Equal(t, uint32(1700000000), req.Timestamp)
	assert.Equal(t, uint32(1700000007), req.Prefetch)
	assert.Equal(t, uint32(1), req.HFreq)
	require.NotNil(t, req.LiveFeedRequest)
	assert.Equal(t, int32(DefaultLiveFeedLimit), req.LiveFeedRequest.Limit)

	p.Duration = 30 * time.Second
	req, err = p.Proto()
	require.NoError(t, err)
	assert.Equal(t, uint32(1700000030), req.Prefetch)
}

func TestUnresolvedTimestamp(t *testing.T) {
	feed := LiveFeedPlaybackParams{LiveFeed: LiveFeedParams{Bounds: hongKong}}
	_, err := feed.Proto()
	assert.ErrorIs(t, err, ErrUnresolvedTimestamp)
	_, err = feed.CacheKey(1)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)

	flight := PlaybackFlightParams{FlightID: 0x2F8A3B1}
	_, err = flight.Proto()
	assert.ErrorIs(t, err, ErrUnresolvedTimestamp)
	_, err = flight.CacheKey(1)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)

	now := time.Unix(1700000123, 0)
	resolved := flight.Resolve(now)
	req, err := resolved.Proto()
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000123), req.Timestamp)
	assert.True(t, flight.Timestamp.IsNow(), "Resolve must not modify the receiver")

	resolvedFeed := feed.Resolve(now)
	key, err := resolvedFeed.CacheKey(42)
	require.NoError(t, err)
	assert.Equal(t, cache.FeedKey{Timestamp: 1700000123}, key)
}

func TestNearestFlights(t *testing.T) {
	req, err := NearestFlightsParams{Lat: 22.5, Lon: 113.25}.Proto()
	require.NoError(t, err)
	assert.Equal(t, &pb.NearestFlightsRequest{
		Location: &pb.Geolocation{Lat: 22.5, Lon: 113.25},
		Radius:   DefaultNearestRadius,
		Limit:    DefaultNearestLimit,
	}, req)

	_, err = NearestFlightsParams{Lat: 95}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = NearestFlightsParams{Lon: -200}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestRequiredFlightIDs(t *testing.T) {
	_, err := FlightDetailsParams{}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = FollowFlightParams{}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = PlaybackFlightParams{Timestamp: At(1)}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = LiveFlightsStatusParams{}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = LiveFlightsStatusParams{FlightIDs: []uint32{1, 0}}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestFlightDetails(t *testing.T) {
	req, err := FlightDetailsParams{
		FlightID:    0x2F8A3B1,
		Restriction: pb.RestrictionVisibility_FULLY_VISIBLE,
		Verbose:     true,
	}.Proto()
	require.NoError(t, err)
	assert.Equal(t, &pb.FlightDetailsRequest{
		FlightID:        0x2F8A3B1,
		RestrictionMode: pb.RestrictionVisibility_FULLY_VISIBLE,
		Verbose:         true,
	}, req)
}

func TestTopFlightsLimit(t *testing.T) {
	req, err := TopFlightsParams{}.Proto()
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultTopFlightsLimit), req.Limit)

	req, err = TopFlightsParams{Limit: 3}.Proto()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), req.Limit)

	_, err = TopFlightsParams{Limit: 11}.Proto()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestCacheKeyPaths(t *testing.T) {
	const fetchedAt = 1700000000
	tests := []struct {
		name string
		key  func() (cache.Key, error)
		want string
	}{
		{"LiveFeed", func() (cache.Key, error) { return LiveFeedParams{Bounds: hongKong}.CacheKey(fetchedAt) }, "feed/1700000000.parquet"},
		{"LiveFeedPlayback", func() (cache.Key, error) {
			return LiveFeedPlaybackParams{Timestamp: At(1600000000)}.CacheKey(fetchedAt)
		}, "feed/1600000000.parquet"},
		{"Nearest", func() (cache.Key, error) { return NearestFlightsParams{Lat: 22.5, Lon: 113.25}.CacheKey(fetchedAt) }, "nearest_flights/113250000_22500000_1700000000.parquet"},
		{"Status", func() (cache.Key, error) { return LiveFlightsStatusParams{FlightIDs: []uint32{1}}.CacheKey(fetchedAt) }, "live_flights_status/1700000000.parquet"},
		{"Details", func() (cache.Key, error) { return FlightDetailsParams{FlightID: 0x2F8A3B1}.CacheKey(fetchedAt) }, "flight_details/2F8A3B1_1700000000.parquet"},
		{"PlaybackFlight", func() (cache.Key, error) {
			return PlaybackFlightParams{FlightID: 0x2F8A3B1, Timestamp: At(1600000000)}.CacheKey(fetchedAt)
		}, "playback_flight/2F8A3B1_1600000000.parquet"},
		{"Top", func() (cache.Key, error) { return TopFlightsParams{}.CacheKey(fetchedAt) }, "top_flights/1700000000.parquet"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, err := tc.key()
			require.NoError(t, err)
			got, err := cache.Path(key, cache.Parquet)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCacheKeyIgnoresVolatileFields(t *testing.T) {
	a, err := LiveFeedParams{Bounds: hongKong, Limit: 10}.CacheKey(5)
	require.NoError(t, err)
	b, err := LiveFeedParams{Bounds: hongKong, Limit: 20, Fields: []pb.Field{pb.FieldSquawk}}.CacheKey(5)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := FlightDetailsParams{FlightID: 1, Verbose: true}.CacheKey(5)
	require.NoError(t, err)
	d, err := FlightDetailsParams{FlightID: 1}.CacheKey(5)
	require.NoError(t, err)
	assert.Equal(t, c, d)

	e, err := FlightDetailsParams{FlightID: 2}.CacheKey(5)
	require.NoError(t, err)
	assert.NotEqual(t, c, e)
}

func TestUncachedMethods(t *testing.T) {
	_, err := FetchSearchIndexParams{}.CacheKey(1)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)
	_, err = FollowFlightParams{FlightID: 1}.CacheKey(1)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)
}

func TestMethodPath(t *testing.T) {
	assert.Equal(t, "/fr24.feed.api.v1.Feed/LiveFeed", MethodLiveFeed.Path())
	assert.Equal(t, "/fr24.feed.api.v1.Feed/Playback", LiveFeedPlaybackParams{}.Method().Path())
	assert.Equal(t, MethodFollowFlight, FollowFlightParams{}.Method())
}

func TestFlightListQuery(t *testing.T) {
	session := &auth.Session{SubscriptionKey: "sub"}
	q, err := FlightListParams{
		Kind:      cache.FlightListReg,
		Ident:     " b-hpb ",
		Timestamp: At(1700000000),
	}.Query(session)
	require.NoError(t, err)
	assert.Equal(t, "fetchBy=reg&limit=10&page=1&query=B-HPB&timestamp=1700000000&token=sub", q.Encode())

	q, err = FlightListParams{Kind: cache.FlightListFlight, Ident: "CX488", Page: 2, Limit: 100, Timestamp: At(1)}.Query(nil)
	require.NoError(t, err)
	assert.Equal(t, "fetchBy=flight&limit=100&page=2&query=CX488&timestamp=1", q.Encode())

	_, err = FlightListParams{Kind: cache.FlightListReg, Ident: "B-HPB"}.Query(nil)
	assert.ErrorIs(t, err, ErrUnresolvedTimestamp)
	_, err = FlightListParams{Kind: "tail", Ident: "B-HPB", Timestamp: At(1)}.Query(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = FlightListParams{Kind: cache.FlightListReg, Timestamp: At(1)}.Query(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = FlightListParams{Kind: cache.FlightListReg, Ident: "B-HPB", Limit: 101, Timestamp: At(1)}.Query(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	a, err := FlightListParams{Kind: cache.FlightListReg, Ident: "b-hpb", Page: 3, Timestamp: At(1)}.CacheKey(9)
	require.NoError(t, err)
	got, err := cache.Path(a, cache.Parquet)
	require.NoError(t, err)
	assert.Equal(t, "flight_list/reg/B-HPB.parquet", got)
}

func TestPlaybackQuery(t *testing.T) {
	q, err := PlaybackParams{FlightID: 0x2F8A3B1, Timestamp: At(1700000000)}.Query(nil)
	require.NoError(t, err)
	assert.Equal(t, "flightId=2f8a3b1&timestamp=1700000000", q.Encode())

	_, err = PlaybackParams{Timestamp: At(1)}.Query(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	key, err := PlaybackParams{FlightID: 0x2F8A3B1}.CacheKey(9)
	require.NoError(t, err)
	got, err := cache.Path(key, cache.JSONLines)
	require.NoError(t, err)
	assert.Equal(t, "playback/2F8A3B1.jsonl.gz", got)
}
