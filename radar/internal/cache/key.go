package cache

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidKey occurs when an identifying parameter is missing or unresolved.
var ErrInvalidKey = errors.New("cache: invalid key")

// Collection is a directory under the cache root holding one kind of table.
type Collection string

const (
	CollectionFeed              Collection = "feed"
	CollectionPlayback          Collection = "playback"
	CollectionNearestFlights    Collection = "nearest_flights"
	CollectionLiveFlightsStatus Collection = "live_flights_status"
	CollectionTopFlights        Collection = "top_flights"
	CollectionFlightDetails     Collection = "flight_details"
	CollectionPlaybackFlight    Collection = "playback_flight"
	CollectionFlightListReg     Collection = "flight_list/reg"
	CollectionFlightListFlight  Collection = "flight_list/flight"
)

// Collections lists every known collection.
var Collections = []Collection{
	CollectionFeed,
	CollectionPlayback,
	CollectionNearestFlights,
	CollectionLiveFlightsStatus,
	CollectionTopFlights,
	CollectionFlightDetails,
	CollectionPlaybackFlight,
	CollectionFlightListReg,
	CollectionFlightListFlight,
}

// A Key identifies one cached table. Name is derived only from identifying
// parameters and is stable across releases.
type Key interface {
	Collection() Collection
	Name() (string, error)
}

// Path returns the slash separated path of key relative to the cache root.
func Path(key Key, format Format) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: nil key", ErrInvalidKey)
	}
	name, err := key.Name()
	if err != nil {
		return "", err
	}
	return path.Join(string(key.Collection()), name+format.Ext()), nil
}

// FormatFlightID renders a flight id the way it appears in cache paths.
func FormatFlightID(id uint32) string {
	return fmt.Sprintf("%X", id)
}

func timestampName(ts int64) (string, error) {
	if ts <= 0 {
		return "", fmt.Errorf("%w: timestamp %d is not a resolved unix time", ErrInvalidKey, ts)
	}
	return fmt.Sprintf("%d", ts), nil
}

func flightIDName(id uint32) (string, error) {
	if id == 0 {
		return "", fmt.Errorf("%w: zero flight id", ErrInvalidKey)
	}
	return FormatFlightID(id), nil
}

// FeedKey names a live feed or feed playback snapshot.
type FeedKey struct {
	Timestamp int64
}

func (FeedKey) Collection() Collection { return CollectionFeed }

func (k FeedKey) Name() (string, error) { return timestampName(k.Timestamp) }

// PlaybackKey names a flight track fetched from the playback endpoint.
type PlaybackKey struct {
	FlightID uint32
}

func (PlaybackKey) Collection() Collection { return CollectionPlayback }

func (k PlaybackKey) Name() (string, error) { return flightIDName(k.FlightID) }

// NearestFlightsKey names a nearest flights query. Coordinates are truncated
// toward zero to integer micro-degrees, so points closer than 1e-6 degrees
// share a key.
type NearestFlightsKey struct {
	Lat       float64
	Lon       float64
	Timestamp int64
}

func (NearestFlightsKey) Collection() Collection { return CollectionNearestFlights }

func (k NearestFlightsKey) Name() (string, error) {
	ts, err := timestampName(k.Timestamp)
	if err != nil {
		return "", err
	}
	if k.Lat < -90 || k.Lat > 90 || k.Lon < -180 || k.Lon > 180 {
		return "", fmt.Errorf("%w: coordinate (%v, %v) out of range", ErrInvalidKey, k.Lat, k.Lon)
	}
	return fmt.Sprintf("%d_%d_%s", int64(k.Lon*1e6), int64(k.Lat*1e6), ts), nil
}

type LiveFlightsStatusKey struct {
	Timestamp int64
}

func (LiveFlightsStatusKey) Collection() Collection { return CollectionLiveFlightsStatus }

func (k LiveFlightsStatusKey) Name() (string, error) { return timestampName(k.Timestamp) }

type TopFlightsKey struct {
	Timestamp int64
}

func (TopFlightsKey) Collection() Collection { return CollectionTopFlights }

func (k TopFlightsKey) Name() (string, error) { return timestampName(k.Timestamp) }

type FlightDetailsKey struct {
	FlightID  uint32
	Timestamp int64
}

func (FlightDetailsKey) Collection() Collection { return CollectionFlightDetails }

func (k FlightDetailsKey) Name() (string, error) { return flightTimestampName(k.FlightID, k.Timestamp) }

type PlaybackFlightKey struct {
	FlightID  uint32
	Timestamp int64
}

func (PlaybackFlightKey) Collection() Collection { return CollectionPlaybackFlight }

func (k PlaybackFlightKey) Name() (string, error) { return flightTimestampName(k.FlightID, k.Timestamp) }

func flightTimestampName(id uint32, ts int64) (string, error) {
	idName, err := flightIDName(id)
	if err != nil {
		return "", err
	}
	tsName, err := timestampName(ts)
	if err != nil {
		return "", err
	}
	return idName + "_" + tsName, nil
}

// FlightListKind selects how a flight list is looked up.
type FlightListKind string

const (
	FlightListReg    FlightListKind = "reg"
	FlightListFlight FlightListKind = "flight"
)

// FlightListKey names a flight list by registration or flight number.
type FlightListKey struct {
	Kind  FlightListKind
	Ident string
}

func (k FlightListKey) Collection() Collection {
	return Collection("flight_list/" + string(k.Kind))
}

func (k FlightListKey) Name() (string, error) {
	if k.Kind != FlightListReg && k.Kind != FlightListFlight {
		return "", fmt.Errorf("%w: unknown flight list kind %q", ErrInvalidKey, k.Kind)
	}
	ident := strings.ToUpper(strings.TrimSpace(k.Ident))
	if ident == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidKey, k.Kind)
	}
	if strings.ContainsAny(ident, `/\`) || ident == "." || ident == ".." {
		return "", fmt.Errorf("%w: %s %q is not a valid path element", ErrInvalidKey, k.Kind, k.Ident)
	}
	return ident, nil
}
