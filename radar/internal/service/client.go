// Package service binds request building, transport, decoding and record
// mapping into one call per provider endpoint.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/pb"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
	"radar.pub/radar/internal/transport"
)

const (
	DefaultBaseURL    = "https://data-feed.flightradar24.com"
	DefaultAPIBaseURL = "https://api.flightradar24.com/common/v1"
)

type config struct {
	baseURL    string
	apiBaseURL string
	httpClient *http.Client
	provider   auth.Provider
	deviceID   string
	log        *slog.Logger
	now        func() time.Time
	rps        float64
	burst      int
}

// Option configures a Client.
type Option func(*config)

// WithAuth sets the session provider. Requests are anonymous by default.
func WithAuth(p auth.Provider) Option {
	return func(cfg *config) { cfg.provider = p }
}

// WithDeviceID pins the device id sent with every request. Without it each
// request carries a freshly generated id.
func WithDeviceID(id string) Option {
	return func(cfg *config) { cfg.deviceID = id }
}

func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) { cfg.httpClient = c }
}

// WithBaseURL sets the host serving the gRPC-Web endpoints.
func WithBaseURL(u string) Option {
	return func(cfg *config) { cfg.baseURL = u }
}

// WithAPIBaseURL sets the prefix of the JSON endpoints.
func WithAPIBaseURL(u string) Option {
	return func(cfg *config) { cfg.apiBaseURL = u }
}

func WithLogger(log *slog.Logger) Option {
	return func(cfg *config) { cfg.log = log }
}

// WithClock overrides the clock used for fetch times and "now".
func WithClock(now func() time.Time) Option {
	return func(cfg *config) { cfg.now = now }
}

// WithRateLimit paces all requests of the Client.
func WithRateLimit(rps float64, burst int) Option {
	return func(cfg *config) { cfg.rps, cfg.burst = rps, burst }
}

// Client holds one endpoint per provider method. It is safe for concurrent
// use; only the underlying HTTP client is shared between calls.
type Client struct {
	transport *transport.Client
	apiBase   *url.URL
	auth      auth.Provider
	deviceID  string
	now       func() time.Time
	log       *slog.Logger

	LiveFeed          *Service[rpc.LiveFeedParams, *pb.LiveFeedRequest, *pb.LiveFeedResponse, record.FeedFlight]
	LiveFeedPlayback  *Service[rpc.LiveFeedPlaybackParams, *pb.PlaybackRequest, *pb.PlaybackResponse, record.FeedFlight]
	NearestFlights    *Service[rpc.NearestFlightsParams, *pb.NearestFlightsRequest, *pb.NearestFlightsResponse, record.NearestFlight]
	LiveFlightsStatus *Service[rpc.LiveFlightsStatusParams, *pb.LiveFlightsStatusRequest, *pb.LiveFlightsStatusResponse, record.FlightStatus]
	FetchSearchIndex  *Service[rpc.FetchSearchIndexParams, *pb.FetchSearchIndexRequest, *pb.FetchSearchIndexResponse, record.FeedFlight]
	FlightDetails     *Service[rpc.FlightDetailsParams, *pb.FlightDetailsRequest, *pb.FlightDetailsResponse, record.FlightDetails]
	PlaybackFlight    *Service[rpc.PlaybackFlightParams, *pb.PlaybackFlightRequest, *pb.PlaybackFlightResponse, record.FlightDetails]
	TopFlights        *Service[rpc.TopFlightsParams, *pb.TopFlightsRequest, *pb.TopFlightsResponse, record.TopFlight]
	FollowFlight      *FollowFlightService
	FlightList        *FlightListService
	Playback          *PlaybackService
}

// New returns a Client talking to the provider.
func New(options ...Option) (*Client, error) {
	cfg := config{
		baseURL:    DefaultBaseURL,
		apiBaseURL: DefaultAPIBaseURL,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.provider == nil {
		cfg.provider = auth.Anonymous()
	}
	if cfg.httpClient == nil {
		hc, err := transport.NewHTTPClient(transport.HTTPConfig{})
		if err != nil {
			return nil, err
		}
		cfg.httpClient = hc
	}

	topts := []transport.Option{
		transport.WithHTTPClient(cfg.httpClient),
		transport.WithLogger(cfg.log),
	}
	if cfg.rps > 0 {
		topts = append(topts, transport.WithRateLimit(cfg.rps, cfg.burst))
	}
	tc, err := transport.New(cfg.baseURL, topts...)
	if err != nil {
		return nil, err
	}
	apiBase, err := url.Parse(cfg.apiBaseURL)
	if err != nil || apiBase.Scheme == "" || apiBase.Host == "" {
		return nil, fmt.Errorf("service: invalid API base URL %q", cfg.apiBaseURL)
	}

	c := &Client{
		transport: tc,
		apiBase:   apiBase,
		auth:      cfg.provider,
		deviceID:  cfg.deviceID,
		now:       cfg.now,
		log:       cfg.log,
	}
	c.LiveFeed = newService[rpc.LiveFeedParams, *pb.LiveFeedRequest](c, alloc[pb.LiveFeedResponse], record.FeedFlightSchema, record.FeedFlights)
	c.LiveFeedPlayback = newService[rpc.LiveFeedPlaybackParams, *pb.PlaybackRequest](c, alloc[pb.PlaybackResponse], record.FeedFlightSchema, record.PlaybackFeedFlights)
	c.NearestFlights = newService[rpc.NearestFlightsParams, *pb.NearestFlightsRequest](c, alloc[pb.NearestFlightsResponse], record.NearestFlightSchema, record.NearestFlights)
	c.LiveFlightsStatus = newService[rpc.LiveFlightsStatusParams, *pb.LiveFlightsStatusRequest](c, alloc[pb.LiveFlightsStatusResponse], record.FlightStatusSchema, record.FlightStatuses)
	c.FetchSearchIndex = newService[rpc.FetchSearchIndexParams, *pb.FetchSearchIndexRequest](c, alloc[pb.FetchSearchIndexResponse], record.FeedFlightSchema, record.SearchIndex)
	c.FlightDetails = newService[rpc.FlightDetailsParams, *pb.FlightDetailsRequest](c, alloc[pb.FlightDetailsResponse], record.FlightDetailsSchema, single(record.FlightDetailsOf))
	c.PlaybackFlight = newService[rpc.PlaybackFlightParams, *pb.PlaybackFlightRequest](c, alloc[pb.PlaybackFlightResponse], record.FlightDetailsSchema, single(record.PlaybackFlightOf))
	c.TopFlights = newService[rpc.TopFlightsParams, *pb.TopFlightsRequest](c, alloc[pb.TopFlightsResponse], record.TopFlightSchema, record.TopFlights)
	c.FollowFlight = &FollowFlightService{c: c}
	c.FlightList = &FlightListService{c: c}
	c.Playback = &PlaybackService{c: c}
	return c, nil
}

// DeviceID is the pinned device id, or empty when every request generates
// its own.
func (c *Client) DeviceID() string { return c.deviceID }

// Now is the client's clock.
func (c *Client) Now() time.Time { return c.now() }

func (c *Client) session(ctx context.Context) (*auth.Session, error) {
	s, err := c.auth.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: resolve session: %w", err)
	}
	return s, nil
}

func alloc[M any]() *M { return new(M) }

func single[R, T any](f func(R) T) func(R) []T {
	return func(r R) []T { return []T{f(r)} }
}
