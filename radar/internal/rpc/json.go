package rpc

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/cache"
)

const (
	FlightListPath = "flight/list.json"
	PlaybackPath   = "flight-playback.json"

	DefaultFlightListLimit = 10
	MaxFlightListLimit     = 100
)

// JSONHeader returns the headers sent to the JSON endpoints.
func JSONHeader() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Origin", Origin)
	h.Set("Referer", Origin+"/")
	return h
}

func withToken(q url.Values, session *auth.Session) url.Values {
	if session != nil && session.SubscriptionKey != "" {
		q.Set("token", string(session.SubscriptionKey))
	}
	return q
}

// FlightListParams requests one page of a registration's or flight number's
// history. Flights scheduled before Timestamp are listed, newest first.
type FlightListParams struct {
	Kind  cache.FlightListKind
	Ident string
	// Page starts at 1.
	Page int
	// Limit defaults to DefaultFlightListLimit.
	Limit     int
	Timestamp Timestamp
}

func (p FlightListParams) Resolve(now time.Time) FlightListParams {
	p.Timestamp = p.Timestamp.Resolve(now)
	return p
}

// Query builds the request query.
func (p FlightListParams) Query(session *auth.Session) (url.Values, error) {
	if p.Kind != cache.FlightListReg && p.Kind != cache.FlightListFlight {
		return nil, invalid("unknown flight list kind %q", p.Kind)
	}
	ident := strings.ToUpper(strings.TrimSpace(p.Ident))
	if ident == "" {
		return nil, invalid("empty %s", p.Kind)
	}
	page := p.Page
	if page == 0 {
		page = 1
	}
	if page < 0 {
		return nil, invalid("page %d", p.Page)
	}
	limit := p.Limit
	if limit == 0 {
		limit = DefaultFlightListLimit
	}
	if limit < 0 || limit > MaxFlightListLimit {
		return nil, invalid("limit %d outside [1, %d]", p.Limit, MaxFlightListLimit)
	}
	ts, err := p.Timestamp.resolved()
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", ident)
	q.Set("fetchBy", string(p.Kind))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("timestamp", strconv.FormatUint(ts, 10))
	return withToken(q, session), nil
}

// CacheKey ignores the cursor: pages of one ident share a file.
func (p FlightListParams) CacheKey(int64) (cache.Key, error) {
	return cache.FlightListKey{Kind: p.Kind, Ident: p.Ident}, nil
}

// PlaybackParams requests the recorded track of a flight.
type PlaybackParams struct {
	FlightID uint32
	// Timestamp is the scheduled departure. The provider ignores it for most
	// flights but rejects requests without one.
	Timestamp Timestamp
}

func (p PlaybackParams) Resolve(now time.Time) PlaybackParams {
	p.Timestamp = p.Timestamp.Resolve(now)
	return p
}

func (p PlaybackParams) Query(session *auth.Session) (url.Values, error) {
	if p.FlightID == 0 {
		return nil, invalid("zero flight id")
	}
	ts, err := p.Timestamp.resolved()
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("flightId", fmt.Sprintf("%x", p.FlightID))
	q.Set("timestamp", strconv.FormatUint(ts, 10))
	return withToken(q, session), nil
}

func (p PlaybackParams) CacheKey(int64) (cache.Key, error) {
	return cache.PlaybackKey{FlightID: p.FlightID}, nil
}
