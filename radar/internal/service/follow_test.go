package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/pb"
	"radar.pub/radar/internal/rpc"
)

// followServer streams updates with increasing altitude, flushing at
// boundaries that split frames, then a trailer.
func followServer(t *testing.T, updates int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /fr24.feed.api.v1.Feed/FollowFlight", func(w http.ResponseWriter, r *http.Request) {
		var req pb.FollowFlightRequest
		readRequest(t, r, &req)

		var stream []byte
		for i := range updates {
			frame, err := grpcweb.Encode(&pb.FollowFlightResponse{
				FlightInfo: &pb.ExtendedFlightInfo{FlightID: req.FlightID, Alt: int32(1000 * (i + 1))},
			})
			assert.NoError(t, err)
			stream = append(stream, frame...)
		}
		stream = append(stream, 0x80, 0, 0, 0, 15)
		stream = append(stream, "grpc-status:0\r\n"...)

		w.Header().Set("Content-Type", rpc.ContentType)
		flusher := w.(http.Flusher)
		for chunk := 3; len(stream) > 0; chunk += 4 {
			n := min(chunk, len(stream))
			w.Write(stream[:n])
			flusher.Flush()
			stream = stream[n:]
		}
	})
	return mux
}

func TestFollowFlightStream(t *testing.T) {
	c := newTestClient(t, followServer(t, 5))

	var alts []int32
	for msg, err := range c.FollowFlight.Stream(context.Background(), rpc.FollowFlightParams{FlightID: 0x2F8A3B1}) {
		require.NoError(t, err)
		require.NotNil(t, msg.FlightInfo)
		assert.Equal(t, uint32(0x2F8A3B1), msg.FlightInfo.FlightID)
		alts = append(alts, msg.FlightInfo.Alt)
	}
	assert.Equal(t, []int32{1000, 2000, 3000, 4000, 5000}, alts)
}

func TestFollowFlightStreamBreak(t *testing.T) {
	c := newTestClient(t, followServer(t, 5))

	n := 0
	for _, err := range c.FollowFlight.Stream(context.Background(), rpc.FollowFlightParams{FlightID: 1}) {
		require.NoError(t, err)
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestFollowFlightStreamErrors(t *testing.T) {
	c := newTestClient(t, followServer(t, 1))
	var errs []error
	for msg, err := range c.FollowFlight.Stream(context.Background(), rpc.FollowFlightParams{}) {
		assert.Nil(t, msg)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], rpc.ErrInvalidParams)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /fr24.feed.api.v1.Feed/FollowFlight", func(w http.ResponseWriter, r *http.Request) {
		frame, err := grpcweb.Encode(&pb.FollowFlightResponse{FlightInfo: &pb.ExtendedFlightInfo{FlightID: 1}})
		assert.NoError(t, err)
		w.Write(frame)
		w.Write(frame[:4])
	})
	c = newTestClient(t, mux)
	errs = errs[:0]
	got := 0
	for msg, err := range c.FollowFlight.Stream(context.Background(), rpc.FollowFlightParams{FlightID: 1}) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got++
		assert.Equal(t, uint32(1), msg.FlightInfo.FlightID)
	}
	assert.Equal(t, 1, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], grpcweb.ErrMalformedFrame)
}
