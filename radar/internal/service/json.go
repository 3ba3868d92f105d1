package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
	"radar.pub/radar/internal/transport"
)

// ErrDecode occurs when a JSON endpoint returns a body that does not decode.
var ErrDecode = errors.New("service: malformed response")

type queryParams interface {
	Query(*auth.Session) (url.Values, error)
}

func (c *Client) getJSON(ctx context.Context, method, path string, params queryParams, out any) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}
	q, err := params.Query(session)
	if err != nil {
		return fmt.Errorf("service: %s: %w", method, err)
	}
	u := c.apiBase.JoinPath(path)
	u.RawQuery = q.Encode()

	resp, err := c.transport.Get(ctx, method, u.String(), rpc.JSONHeader())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, method, err)
	}
	return nil
}

// PlaybackService fetches recorded flight tracks.
type PlaybackService struct {
	c *Client
}

func (s *PlaybackService) Fetch(ctx context.Context, params rpc.PlaybackParams) (*Result[rpc.PlaybackParams, *record.PlaybackResponse, record.TrackPoint], error) {
	fetchedAt := s.c.now()
	params = params.Resolve(fetchedAt)
	var resp record.PlaybackResponse
	if err := s.c.getJSON(ctx, "FlightPlayback", rpc.PlaybackPath, params, &resp); err != nil {
		return nil, err
	}
	return NewResult(params, &resp, fetchedAt, record.TrackPointSchema, record.PlaybackTrack), nil
}

// FlightListService fetches a registration's or flight number's history.
type FlightListService struct {
	c *Client
}

// Fetch requests a single page.
func (s *FlightListService) Fetch(ctx context.Context, params rpc.FlightListParams) (*Result[rpc.FlightListParams, *record.FlightListResponse, record.FlightListEntry], error) {
	fetchedAt := s.c.now()
	params = params.Resolve(fetchedAt)
	resp, err := s.page(ctx, params)
	if err != nil {
		return nil, err
	}
	return NewResult(params, resp, fetchedAt, record.FlightListSchema, record.FlightList), nil
}

func (s *FlightListService) page(ctx context.Context, params rpc.FlightListParams) (*record.FlightListResponse, error) {
	var resp record.FlightListResponse
	if err := s.c.getJSON(ctx, "FlightList", rpc.FlightListPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

const (
	DefaultMaxPages = 10
	DefaultRetries  = 3
	DefaultBackoff  = 5 * time.Second
)

type FetchAllOptions struct {
	// MaxPages defaults to DefaultMaxPages.
	MaxPages int
	// Retries is the number of extra attempts per page. Zero means
	// DefaultRetries, negative disables retries.
	Retries int
	// Backoff between attempts defaults to DefaultBackoff.
	Backoff time.Duration
}

// FetchAll follows the provider's pages. Each page is requested with the
// earliest scheduled departure of the previous page as its timestamp. It
// stops when the provider reports no more pages, after MaxPages, or when the
// cursor stops moving. A page that still fails after the retry budget fails
// the whole call.
func (s *FlightListService) FetchAll(ctx context.Context, params rpc.FlightListParams, opts FetchAllOptions) (*Result[rpc.FlightListParams, []*record.FlightListResponse, record.FlightListEntry], error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	switch {
	case opts.Retries == 0:
		opts.Retries = DefaultRetries
	case opts.Retries < 0:
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}

	fetchedAt := s.c.now()
	params = params.Resolve(fetchedAt)
	cursor, _ := params.Timestamp.Unix()

	var pages []*record.FlightListResponse
	for len(pages) < opts.MaxPages {
		p := params
		p.Page = 1
		p.Timestamp = rpc.At(cursor)
		resp, err := s.pageWithRetry(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp)
		if !resp.More() {
			break
		}
		next, ok := earliestDeparture(resp)
		if !ok || next >= cursor {
			s.c.log.DebugContext(ctx, "service: flight list cursor did not advance", "ident", params.Ident, "cursor", cursor)
			break
		}
		cursor = next
	}
	s.c.log.DebugContext(ctx, "service: flight list fetched", "ident", params.Ident, "pages", len(pages))
	return NewResult(params, pages, fetchedAt, record.FlightListSchema, MergeFlightLists), nil
}

func (s *FlightListService) pageWithRetry(ctx context.Context, params rpc.FlightListParams, opts FetchAllOptions) (*record.FlightListResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := s.page(ctx, params)
		if err == nil || attempt >= opts.Retries || !retryable(err) {
			return resp, err
		}
		s.c.log.WarnContext(ctx, "service: flight list page failed, retrying",
			"ident", params.Ident,
			"attempt", attempt+1,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}
}

// retryable reports whether err may go away on its own: network failures,
// 5xx and rate limiting.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrDecode) {
		return false
	}
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary() || statusErr.StatusCode >= 500
	}
	return true
}

func earliestDeparture(resp *record.FlightListResponse) (int64, bool) {
	var earliest int64
	found := false
	for _, item := range resp.Items() {
		dep := item.Time.Scheduled.Departure
		if dep == nil || *dep <= 0 {
			continue
		}
		if !found || *dep < earliest {
			earliest, found = *dep, true
		}
	}
	return earliest, found
}

// MergeFlightLists flattens pages in order, keeping the first row of each
// (flight id, scheduled departure) pair.
func MergeFlightLists(pages []*record.FlightListResponse) []record.FlightListEntry {
	type key struct {
		id   uint64
		stod int64
	}
	seen := make(map[key]bool)
	rows := []record.FlightListEntry{}
	for _, page := range pages {
		for _, row := range record.FlightList(page) {
			k := key{row.FlightID, row.STOD}
			if seen[k] {
				continue
			}
			seen[k] = true
			rows = append(rows, row)
		}
	}
	return rows
}
