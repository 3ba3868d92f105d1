package rpc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/pb"
)

// ErrInvalidParams occurs when params cannot be turned into a request.
var ErrInvalidParams = errors.New("rpc: invalid params")

const (
	DefaultLiveFeedLimit    = 1500
	MaxLiveFeedLimit        = 2000
	DefaultMaxAge           = 14400
	DefaultPlaybackDuration = 7 * time.Second
	DefaultNearestRadius    = 10000
	DefaultNearestLimit     = 1500
	DefaultTopFlightsLimit  = 10
	MaxTopFlightsLimit      = 10
)

// DefaultFields is the live feed field mask used when none is set.
// Anonymous sessions are limited to four fields by the provider.
var DefaultFields = []pb.Field{pb.FieldFlight, pb.FieldReg, pb.FieldRoute, pb.FieldType}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// BoundingBox is an area in degrees.
type BoundingBox struct {
	South float64
	North float64
	West  float64
	East  float64
}

func (b BoundingBox) Validate() error {
	switch {
	case b.South < -90 || b.North > 90:
		return invalid("latitude range [%v, %v] outside [-90, 90]", b.South, b.North)
	case b.South >= b.North:
		return invalid("south %v must be below north %v", b.South, b.North)
	case b.West < -180 || b.East > 180:
		return invalid("longitude range [%v, %v] outside [-180, 180]", b.West, b.East)
	case b.West >= b.East:
		return invalid("west %v must be below east %v", b.West, b.East)
	}
	return nil
}

func (b BoundingBox) proto() *pb.LocationBoundaries {
	return &pb.LocationBoundaries{
		North: float32(b.North),
		South: float32(b.South),
		West:  float32(b.West),
		East:  float32(b.East),
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", b.South, b.North, b.West, b.East)
}

func defaultVisibility() *pb.VisibilitySettings {
	v := &pb.VisibilitySettings{TrafficType: pb.TrafficType_ALL}
	for s := range int32(len(pb.DataSource_name)) {
		v.Sources = append(v.Sources, pb.DataSource(s))
	}
	for s := range int32(12) {
		v.Services = append(v.Services, s)
	}
	return v
}

// LiveFeedParams requests the aircraft inside a bounding box.
type LiveFeedParams struct {
	Bounds BoundingBox
	Stats  bool
	// Limit defaults to DefaultLiveFeedLimit.
	Limit int
	// MaxAge in seconds defaults to DefaultMaxAge.
	MaxAge      int
	Fields      []pb.Field
	Restriction pb.RestrictionVisibility
}

func (LiveFeedParams) Method() Method { return MethodLiveFeed }
func (p LiveFeedParams) Resolve(time.Time) LiveFeedParams { return p }

func (p LiveFeedParams) Proto() (*pb.LiveFeedRequest, error) {
	if err := p.Bounds.Validate(); err != nil {
		return nil, err
	}
	limit := p.Limit
	if limit == 0 {
		limit = DefaultLiveFeedLimit
	}
	if limit < 0 || limit > MaxLiveFeedLimit {
		return nil, invalid("limit %d outside [1, %d]", p.Limit, MaxLiveFeedLimit)
	}
	maxAge := p.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	if maxAge < 0 || maxAge > math.MaxInt32 {
		return nil, invalid("max age %d", p.MaxAge)
	}
	fields, err := normalizeFields(p.Fields)
	if err != nil {
		return nil, err
	}
	return &pb.LiveFeedRequest{
		Bounds:          p.Bounds.proto(),
		Settings:        defaultVisibility(),
		Stats:           p.Stats,
		Limit:           int32(limit),
		MaxAge:          int32(maxAge),
		RestrictionMode: p.Restriction,
		FieldMask:       pb.NewFieldMask(fields...),
	}, nil
}

func (p LiveFeedParams) CacheKey(fetchedAt int64) (cache.Key, error) {
	return cache.FeedKey{Timestamp: fetchedAt}, nil
}

// normalizeFields validates fields and drops repeats, keeping the first
// occurrence.
func normalizeFields(fields []pb.Field) ([]pb.Field, error) {
	if len(fields) == 0 {
		return DefaultFields, nil
	}
	seen := make(map[pb.Field]bool, len(fields))
	out := make([]pb.Field, 0, len(fields))
	for _, f := range fields {
		parsed, err := pb.ParseField(string(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		if seen[parsed] {
			continue
		}
		seen[parsed] = true
		out = append(out, parsed)
	}
	return out, nil
}

// LiveFeedPlaybackParams replays the live feed at Timestamp.
type LiveFeedPlaybackParams struct {
	LiveFeed  LiveFeedParams
	Timestamp Timestamp
	// Duration is the prefetch window and defaults to DefaultPlaybackDuration.
	Duration time.Duration
	HFreq    bool
}

func (LiveFeedPlaybackParams) Method() Method { return MethodPlayback }

// Resolve returns a copy with a symbolic timestamp replaced by now.
func (p LiveFeedPlaybackParams) Resolve(now time.Time) LiveFeedPlaybackParams {
	p.Timestamp = p.Timestamp.Resolve(now)
	return p
}

func (p LiveFeedPlaybackParams) Proto() (*pb.PlaybackRequest, error) {
	ts, err := p.Timestamp.resolved()
	if err != nil {
		return nil, err
	}
	if ts > math.MaxUint32 {
		return nil, invalid("timestamp %d out of range", ts)
	}
	duration := p.Duration
	if duration == 0 {
		duration = DefaultPlaybackDuration
	}
	if duration < 0 {
		return nil, invalid("negative duration %s", p.Duration)
	}
	feed, err := p.LiveFeed.Proto()
	if err != nil {
		return nil, err
	}
	req := &pb.PlaybackRequest{
		LiveFeedRequest: feed,
		Timestamp:       uint32(ts),
		Prefetch:        uint32(ts) + uint32(duration/time.Second),
	}
	if p.HFreq {
		req.HFreq = 1
	}
	return req, nil
}

// CacheKey uses the playback timestamp, not the fetch time.
func (p LiveFeedPlaybackParams) CacheKey(int64) (cache.Key, error) {
	ts, ok := p.Timestamp.Unix()
	if !ok {
		return nil, fmt.Errorf("%w: %w", cache.ErrInvalidKey, ErrUnresolvedTimestamp)
	}
	return cache.FeedKey{Timestamp: ts}, nil
}

// NearestFlightsParams requests the aircraft closest to a point.
type NearestFlightsParams struct {
	Lat float64
	Lon float64
	// Radius in metres defaults to DefaultNearestRadius.
	Radius uint32
	// Limit defaults to DefaultNearestLimit.
	Limit uint32
}

func (NearestFlightsParams) Method() Method { return MethodNearestFlights }
func (p NearestFlightsParams) Resolve(time.Time) NearestFlightsParams { return p }

func (p NearestFlightsParams) Proto() (*pb.NearestFlightsRequest, error) {
	if p.Lat < -90 || p.Lat > 90 || math.IsNaN(p.Lat) {
		return nil, invalid("latitude %v outside [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 || math.IsNaN(p.Lon) {
		return nil, invalid("longitude %v outside [-180, 180]", p.Lon)
	}
	req := &pb.NearestFlightsRequest{
		Location: &pb.Geolocation{Lat: p.Lat, Lon: p.Lon},
		Radius:   p.Radius,
		Limit:    p.Limit,
	}
	if req.Radius == 0 {
		req.Radius = DefaultNearestRadius
	}
	if req.Limit == 0 {
		req.Limit = DefaultNearestLimit
	}
	return req, nil
}

func (p NearestFlightsParams) CacheKey(fetchedAt int64) (cache.Key, error) {
	return cache.NearestFlightsKey{Lat: p.Lat, Lon: p.Lon, Timestamp: fetchedAt}, nil
}

// LiveFlightsStatusParams requests the current status of known flights.
type LiveFlightsStatusParams struct {
	FlightIDs []uint32
}

func (LiveFlightsStatusParams) Method() Method { return MethodLiveFlightsStatus }
func (p LiveFlightsStatusParams) Resolve(time.Time) LiveFlightsStatusParams { return p }

func (p LiveFlightsStatusParams) Proto() (*pb.LiveFlightsStatusRequest, error) {
	if len(p.FlightIDs) == 0 {
		return nil, invalid("no flight ids")
	}
	for _, id := range p.FlightIDs {
		if id == 0 {
			return nil, invalid("zero flight id")
		}
	}
	return &pb.LiveFlightsStatusRequest{FlightIDs: append([]uint32(nil), p.FlightIDs...)}, nil
}

func (p LiveFlightsStatusParams) CacheKey(fetchedAt int64) (cache.Key, error) {
	return cache.LiveFlightsStatusKey{Timestamp: fetchedAt}, nil
}

// FetchSearchIndexParams requests the search index. Results are not cached.
type FetchSearchIndexParams struct{}

func (FetchSearchIndexParams) Method() Method { return MethodFetchSearchIndex }
func (p FetchSearchIndexParams) Resolve(time.Time) FetchSearchIndexParams { return p }

func (FetchSearchIndexParams) Proto() (*pb.FetchSearchIndexRequest, error) {
	return &pb.FetchSearchIndexRequest{}, nil
}

func (FetchSearchIndexParams) CacheKey(int64) (cache.Key, error) {
	return nil, fmt.Errorf("%w: %s results are not cached", cache.ErrInvalidKey, MethodFetchSearchIndex)
}

// FlightDetailsParams requests details of a live flight.
type FlightDetailsParams struct {
	FlightID    uint32
	Restriction pb.RestrictionVisibility
	Verbose     bool
}

func (FlightDetailsParams) Method() Method { return MethodFlightDetails }
func (p FlightDetailsParams) Resolve(time.Time) FlightDetailsParams { return p }

func (p FlightDetailsParams) Proto() (*pb.FlightDetailsRequest, error) {
	if p.FlightID == 0 {
		return nil, invalid("zero flight id")
	}
	return &pb.FlightDetailsRequest{
		FlightID:        p.FlightID,
		RestrictionMode: p.Restriction,
		Verbose:         p.Verbose,
	}, nil
}

func (p FlightDetailsParams) CacheKey(fetchedAt int64) (cache.Key, error) {
	return cache.FlightDetailsKey{FlightID: p.FlightID, Timestamp: fetchedAt}, nil
}

// PlaybackFlightParams requests a historic flight by id and timestamp.
type PlaybackFlightParams struct {
	FlightID  uint32
	Timestamp Timestamp
}

func (PlaybackFlightParams) Method() Method { return MethodPlaybackFlight }

func (p PlaybackFlightParams) Resolve(now time.Time) PlaybackFlightParams {
	p.Timestamp = p.Timestamp.Resolve(now)
	return p
}

func (p PlaybackFlightParams) Proto() (*pb.PlaybackFlightRequest, error) {
	if p.FlightID == 0 {
		return nil, invalid("zero flight id")
	}
	ts, err := p.Timestamp.resolved()
	if err != nil {
		return nil, err
	}
	return &pb.PlaybackFlightRequest{FlightID: p.FlightID, Timestamp: ts}, nil
}

func (p PlaybackFlightParams) CacheKey(int64) (cache.Key, error) {
	ts, ok := p.Timestamp.Unix()
	if !ok {
		return nil, fmt.Errorf("%w: %w", cache.ErrInvalidKey, ErrUnresolvedTimestamp)
	}
	return cache.PlaybackFlightKey{FlightID: p.FlightID, Timestamp: ts}, nil
}

// TopFlightsParams requests the most followed flights.
type TopFlightsParams struct {
	// Limit defaults to DefaultTopFlightsLimit.
	Limit uint32
}

func (TopFlightsParams) Method() Method { return MethodTopFlights }
func (p TopFlightsParams) Resolve(time.Time) TopFlightsParams { return p }

func (p TopFlightsParams) Proto() (*pb.TopFlightsRequest, error) {
	limit := p.Limit
	if limit == 0 {
		limit = DefaultTopFlightsLimit
	}
	if limit > MaxTopFlightsLimit {
		return nil, invalid("limit %d above %d", p.Limit, MaxTopFlightsLimit)
	}
	return &pb.TopFlightsRequest{Limit: limit}, nil
}

func (p TopFlightsParams) CacheKey(fetchedAt int64) (cache.Key, error) {
	return cache.TopFlightsKey{Timestamp: fetchedAt}, nil
}

// FollowFlightParams subscribes to updates of one flight. Streams are not cached.
type FollowFlightParams struct {
	FlightID    uint32
	Restriction pb.RestrictionVisibility
}

func (FollowFlightParams) Method() Method { return MethodFollowFlight }
func (p FollowFlightParams) Resolve(time.Time) FollowFlightParams { return p }

func (p FollowFlightParams) Proto() (*pb.FollowFlightRequest, error) {
	if p.FlightID == 0 {
		return nil, invalid("zero flight id")
	}
	return &pb.FollowFlightRequest{FlightID: p.FlightID, RestrictionMode: p.Restriction}, nil
}

func (FollowFlightParams) CacheKey(int64) (cache.Key, error) {
	return nil, fmt.Errorf("%w: %s results are not cached", cache.ErrInvalidKey, MethodFollowFlight)
}

var (
	_ Params[LiveFeedParams, *pb.LiveFeedRequest]                   = LiveFeedParams{}
	_ Params[LiveFeedPlaybackParams, *pb.PlaybackRequest]           = LiveFeedPlaybackParams{}
	_ Params[NearestFlightsParams, *pb.NearestFlightsRequest]       = NearestFlightsParams{}
	_ Params[LiveFlightsStatusParams, *pb.LiveFlightsStatusRequest] = LiveFlightsStatusParams{}
	_ Params[FetchSearchIndexParams, *pb.FetchSearchIndexRequest]   = FetchSearchIndexParams{}
	_ Params[FlightDetailsParams, *pb.FlightDetailsRequest]         = FlightDetailsParams{}
	_ Params[PlaybackFlightParams, *pb.PlaybackFlightRequest]       = PlaybackFlightParams{}
	_ Params[TopFlightsParams, *pb.TopFlightsRequest]               = TopFlightsParams{}
	_ Params[FollowFlightParams, *pb.FollowFlightRequest]           = FollowFlightParams{}
)
