package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/pb"
	"radar.pub/radar/internal/rpc"
)

// FollowFlightService streams updates of a single flight.
type FollowFlightService struct {
	c *Client
}

// Stream opens the stream and yields one message per DATA frame. Frames may
// arrive split across any number of reads. Breaking out of the loop closes
// the response body; the stream has no timeout of its own, so callers bound
// it with ctx. The sequence ends after the first error.
func (s *FollowFlightService) Stream(ctx context.Context, params rpc.FollowFlightParams) iter.Seq2[*pb.FollowFlightResponse, error] {
	return func(yield func(*pb.FollowFlightResponse, error) bool) {
		body, err := s.open(ctx, params)
		if err != nil {
			yield(nil, err)
			return
		}
		defer body.Close()

		fr := grpcweb.NewFrameReader(body)
		for n := 0; ; n++ {
			msg := new(pb.FollowFlightResponse)
			err := fr.Decode(msg)
			if errors.Is(err, io.EOF) {
				s.c.log.DebugContext(ctx, "service: follow stream ended", "flight_id", params.FlightID, "messages", n)
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("service: %s stream: %w", rpc.MethodFollowFlight, err))
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

func (s *FollowFlightService) open(ctx context.Context, params rpc.FollowFlightParams) (io.ReadCloser, error) {
	msg, err := params.Proto()
	if err != nil {
		return nil, fmt.Errorf("service: %s: %w", rpc.MethodFollowFlight, err)
	}
	session, err := s.c.session(ctx)
	if err != nil {
		return nil, err
	}
	env, err := rpc.BuildEnvelope(rpc.MethodFollowFlight, msg, session, s.c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return s.c.transport.Stream(ctx, env)
}
