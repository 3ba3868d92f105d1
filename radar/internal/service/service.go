package service

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
)

// Service fetches one gRPC-Web endpoint. Q is the params type, P and R the
// protobuf request and response, T the flat record type.
type Service[Q rpc.Params[Q, P], P grpcweb.Message, R grpcweb.Message, T any] struct {
	c           *Client
	newResponse func() R
	schema      *record.Schema[T]
	records     func(R) []T
}

func newService[Q rpc.Params[Q, P], P grpcweb.Message, R grpcweb.Message, T any](c *Client, newResponse func() R, schema *record.Schema[T], records func(R) []T) *Service[Q, P, R, T] {
	return &Service[Q, P, R, T]{c: c, newResponse: newResponse, schema: schema, records: records}
}

// Schema of the records returned by this endpoint.
func (s *Service[Q, P, R, T]) Schema() *record.Schema[T] { return s.schema }

// Fetch performs one request. A symbolic "now" in params is resolved to the
// fetch time first, so the result always carries absolute timestamps.
func (s *Service[Q, P, R, T]) Fetch(ctx context.Context, params Q) (*Result[Q, R, T], error) {
	fetchedAt := s.c.now()
	params = params.Resolve(fetchedAt)
	method := params.Method()

	msg, err := params.Proto()
	if err != nil {
		return nil, fmt.Errorf("service: %s: %w", method, err)
	}
	session, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}
	env, err := rpc.BuildEnvelope(method, msg, session, s.c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	resp, err := s.c.transport.Do(ctx, env)
	if err != nil {
		return nil, err
	}

	out := s.newResponse()
	if err := grpcweb.Decode(resp.Body, out); err != nil {
		return nil, fmt.Errorf("service: decode %s response: %w", method, err)
	}
	s.c.log.DebugContext(ctx, "service: fetched", "method", method.String(), "bytes", len(resp.Body))
	return &Result[Q, R, T]{
		params:    params,
		response:  out,
		fetchedAt: fetchedAt,
		schema:    s.schema,
		records:   s.records,
	}, nil
}

// Keyed params derive the cache key of their result.
type Keyed interface {
	CacheKey(fetchedAt int64) (cache.Key, error)
}

// Result pairs a request with its raw response and fetch time. Derived views
// are recomputed on every call.
type Result[Q Keyed, R, T any] struct {
	params    Q
	response  R
	fetchedAt time.Time
	schema    *record.Schema[T]
	records   func(R) []T
}

// NewResult pairs params with an already decoded response.
func NewResult[Q Keyed, R, T any](params Q, response R, fetchedAt time.Time, schema *record.Schema[T], records func(R) []T) *Result[Q, R, T] {
	return &Result[Q, R, T]{
		params:    params,
		response:  response,
		fetchedAt: fetchedAt,
		schema:    schema,
		records:   records,
	}
}

// Params of the request, with timestamps resolved.
func (r *Result[Q, R, T]) Params() Q { return r.params }

func (r *Result[Q, R, T]) FetchedAt() time.Time { return r.fetchedAt }

// Proto returns the decoded response.
func (r *Result[Q, R, T]) Proto() R { return r.response }

// Records flattens the response.
func (r *Result[Q, R, T]) Records() []T { return r.records(r.response) }

// Table builds an arrow record of the flattened response. The caller must
// release it.
func (r *Result[Q, R, T]) Table(mem memory.Allocator) arrow.Record {
	return r.schema.NewRecord(mem, r.Records())
}

func (r *Result[Q, R, T]) CacheKey() (cache.Key, error) {
	return r.params.CacheKey(r.fetchedAt.Unix())
}

// WriteTable stores the table in c under the result's cache key.
func (r *Result[Q, R, T]) WriteTable(ctx context.Context, c *cache.Cache, opts cache.WriteOptions) (string, error) {
	key, err := r.CacheKey()
	if err != nil {
		return "", err
	}
	rec := r.Table(memory.DefaultAllocator)
	defer rec.Release()
	return c.Write(ctx, key, rec, opts)
}
