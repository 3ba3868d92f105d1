package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
)

// DefaultWorldConcurrency bounds the number of cells fetched at once.
const DefaultWorldConcurrency = 8

type WorldOptions struct {
	// Concurrency defaults to DefaultWorldConcurrency.
	Concurrency int
	// Cells default to rpc.WorldCells.
	Cells []rpc.BoundingBox
}

// CellError is the failure of one world cell.
type CellError struct {
	Cell rpc.BoundingBox
	Err  error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %s: %v", e.Cell, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// AggregateError collects the failed cells of a world fetch.
type AggregateError struct {
	Total  int
	errors *multierror.Error
}

// Failed is the number of failed cells.
func (e *AggregateError) Failed() int { return e.errors.Len() }

func (e *AggregateError) Error() string {
	return fmt.Sprintf("service: %d of %d world cells failed: %v", e.Failed(), e.Total, e.errors.Errors[0])
}

// Unwrap returns every *CellError.
func (e *AggregateError) Unwrap() []error { return e.errors.WrappedErrors() }

// WorldResult is a live feed over every world cell that succeeded.
type WorldResult struct {
	FetchedAt time.Time
	Flights   []record.FeedFlight
	Cells     int
	// Partial is non-nil when some cells failed, but no more than half.
	Partial *AggregateError
}

func (r *WorldResult) CacheKey() (cache.Key, error) {
	return cache.FeedKey{Timestamp: r.FetchedAt.Unix()}, nil
}

// WriteTable stores the merged feed in c.
func (r *WorldResult) WriteTable(ctx context.Context, c *cache.Cache, opts cache.WriteOptions) (string, error) {
	key, err := r.CacheKey()
	if err != nil {
		return "", err
	}
	rec := record.FeedFlightSchema.NewRecord(nil, r.Flights)
	defer rec.Release()
	return c.Write(ctx, key, rec, opts)
}

// WorldFeed fetches the live feed once per cell, params.Bounds being replaced
// by each cell. Failed cells contribute nothing. The call fails with an
// *AggregateError only when more than half of the cells fail.
func (c *Client) WorldFeed(ctx context.Context, params rpc.LiveFeedParams, opts WorldOptions) (*WorldResult, error) {
	cells := opts.Cells
	if cells == nil {
		cells = rpc.WorldCells()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultWorldConcurrency
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		failed  *multierror.Error
		flights = make([][]record.FeedFlight, len(cells))
	)
	g.SetLimit(limit)
	fetchedAt := c.now()
	for i, cell := range cells {
		g.Go(func() error {
			p := params
			p.Bounds = cell
			res, err := c.LiveFeed.Fetch(ctx, p)
			if err != nil {
				c.log.WarnContext(ctx, "service: world cell failed", "cell", cell.String(), "error", err)
				mu.Lock()
				failed = multierror.Append(failed, &CellError{Cell: cell, Err: err})
				mu.Unlock()
				return nil
			}
			flights[i] = res.Records()
			return nil
		})
	}
	// Cell goroutines never return errors.
	_ = g.Wait()

	result := &WorldResult{
		FetchedAt: fetchedAt,
		Flights:   slices.Concat(flights...),
		Cells:     len(cells),
	}
	if failed == nil {
		return result, nil
	}
	aggregate := &AggregateError{Total: len(cells), errors: failed}
	if aggregate.Failed() > len(cells)/2 {
		return nil, aggregate
	}
	c.log.WarnContext(ctx, "service: world feed partial", "failed", aggregate.Failed(), "cells", len(cells))
	result.Partial = aggregate
	return result, nil
}
