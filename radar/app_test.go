package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radar.pub/radar/internal/auth"
	"radar.pub/radar/internal/events"
	"radar.pub/radar/internal/grpcweb"
	"radar.pub/radar/internal/pb"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
)

type testApp struct {
	t        *testing.T
	cacheDir string
	baseURL  string
}

func newTestApp(t *testing.T, handler http.Handler) *testApp {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{t: t, cacheDir: t.TempDir(), baseURL: srv.URL}
}

// run executes radar with args and returns its standard output.
func (a *testApp) run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp(context.Background(), strings.NewReader(""), &out, func(cfg *Config) {
		cfg.BaseURL = a.baseURL
		cfg.APIBaseURL = a.baseURL + "/common/v1"
		cfg.CacheDir = a.cacheDir
		cfg.CredentialsPath = filepath.Join(a.cacheDir, "no-credentials.toml")
		cfg.DeviceID = "web-test"
		cfg.MetricsAddr = ""
	})
	err := app.Run(append([]string{"radar"}, args...))
	return out.String(), err
}

func serveFrame(t *testing.T, m grpcweb.Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, err := grpcweb.Encode(m)
		assert.NoError(t, err)
		w.Header().Set("Content-Type", rpc.ContentType)
		w.Write(frame)
	}
}

func decodeLines[T any](t *testing.T, out string) []T {
	t.Helper()
	var rows []T
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var row T
		require.NoError(t, json.Unmarshal([]byte(line), &row), line)
		rows = append(rows, row)
	}
	return rows
}

func TestTopCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /fr24.feed.api.v1.Feed/TopFlights", serveFrame(t, &pb.TopFlightsResponse{
		Scoreboard: []pb.FollowedFlight{
			{FlightID: 0x3a1b2c, LiveClicks: 900, Callsign: "BAW1", FromIATA: "LHR", ToIATA: "JFK"},
			{FlightID: 0x3a1b2d, LiveClicks: 400, Callsign: "AFR2"},
		},
	}))
	app := newTestApp(t, mux)

	out, err := app.run("top", "--limit", "2")
	require.NoError(t, err)

	rows := decodeLines[record.TopFlight](t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, uint32(0x3a1b2c), rows[0].FlightID)
	assert.Equal(t, "BAW1", rows[0].Callsign)
	assert.Equal(t, "LHR", rows[0].FromIATA)
	assert.Equal(t, uint32(400), rows[1].LiveClicks)
}

func TestFeedSaveAndCache(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("POST /fr24.feed.api.v1.Feed/LiveFeed", serveFrame(t, &pb.LiveFeedResponse{
		Flights: []pb.Flight{
			{FlightID: 0x2f8a3b1, Lat: 22.3, Lon: 113.9, Callsign: "CPA488"},
		},
	}))
	app := newTestApp(t, mux)

	out, err := app.run("--format", "jsonl", "feed",
		"--south", "22", "--north", "23", "--west", "113", "--east", "114", "--save")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(path, filepath.Join(app.cacheDir, "feed")), path)
	assert.True(t, strings.HasSuffix(path, ".jsonl.gz"), path)

	out, err = app.run("cache", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "feed")
	assert.Contains(t, out, "jsonl")

	out, err = app.run("cache", "cat", "feed")
	require.NoError(t, err)
	rows := decodeLines[record.FeedFlight](t, out)
	require.Len(t, rows, 1)
	assert.Equal(t, "CPA488", rows[0].Callsign)

	_, err = app.run("cache", "cat", "bogus")
	assert.Error(t, err)
}

func TestFeedRequiresBounds(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	_, err := app.run("feed", "--south", "22")
	assert.Error(t, err)
}

func TestFlightListCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /common/v1/flight/list.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "reg", r.URL.Query().Get("fetchBy"))
		assert.Equal(t, "B-HUJ", r.URL.Query().Get("query"))
		w.Write([]byte(`{"result":{"response":{"item":{"current":1},"page":{"current":1,"more":false},"data":[
			{"identification":{"id":"2f8a3b1","number":{"default":"CX488"}},"time":{"scheduled":{"departure":1700000000}}}
		]}}}`))
	})
	app := newTestApp(t, mux)

	_, err := app.run("flight-list")
	assert.Error(t, err, "one of --reg or --flight is required")
	_, err = app.run("flight-list", "--reg", "B-HUJ", "--flight", "CX488")
	assert.Error(t, err)

	out, err := app.run("flight-list", "--reg", "B-HUJ", "--all", "--retries", "-1")
	require.NoError(t, err)
	rows := decodeLines[record.FlightListEntry](t, out)
	require.Len(t, rows, 1)
}

func TestStatusInvalidFlightID(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	_, err := app.run("status", "not-hex")
	assert.ErrorIs(t, err, rpc.ErrInvalidFlightID)

	_, err = app.run("details")
	assert.Error(t, err)
}

func TestFlightIDHelp(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	for _, cmd := range []string{"status", "details", "playback-flight", "follow", "playback"} {
		out, err := app.run(cmd, "--help")
		require.NoError(t, err, cmd)
		assert.Contains(t, out, "write #12345 for a decimal id", cmd)
	}

	_, err := app.run("status", "12z")
	require.ErrorIs(t, err, rpc.ErrInvalidFlightID)
	assert.ErrorContains(t, err, "prefix decimal ids with #")
}

func TestCacheListEmpty(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	out, err := app.run("cache", "ls")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestLoginCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "pilot@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "pw", r.PostForm.Get("password"))
		w.Write([]byte(`{"success":true,"status":"success","userData":{"accessToken":"opaque-token","subscriptionKey":"sub-key"}}`))
	})
	app := newTestApp(t, mux)
	path := filepath.Join(app.cacheDir, "creds", "credentials.toml")

	var out bytes.Buffer
	in := strings.NewReader("pilot@example.com\npw\n")
	cliApp := newApp(context.Background(), in, &out, func(cfg *Config) {
		cfg.LoginURL = app.baseURL + "/user/login"
		cfg.CredentialsPath = path
	})
	require.NoError(t, cliApp.Run([]string{"radar", "login"}))
	assert.Contains(t, out.String(), "Saved credentials to "+path)

	creds, err := auth.LoadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, auth.Token("opaque-token"), creds.AccessToken)
	assert.Equal(t, auth.Token("sub-key"), creds.SubscriptionKey)
	assert.Empty(t, creds.Username, "the password is never stored")
}

func TestEventsRequiresTopic(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	_, err := app.run("events")
	assert.Error(t, err)
}

type fakeSubscriber struct {
	msgs    []*events.Message
	drained chan struct{}
}

func (s *fakeSubscriber) Receive(ctx context.Context) (*events.Message, error) {
	if len(s.msgs) == 0 {
		close(s.drained)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	msg := s.msgs[0]
	s.msgs = s.msgs[1:]
	return msg, nil
}

func (s *fakeSubscriber) Close() {}

func TestPrintEvents(t *testing.T) {
	acked := 0
	msg := func(body string) *events.Message {
		return &events.Message{ID: "m", Body: []byte(body), Ack: func() { acked++ }, Nack: func() {}}
	}
	sub := &fakeSubscriber{drained: make(chan struct{}), msgs: []*events.Message{
		msg(`{"collection":"feed","path":"/c/feed/1.parquet","rows":3}`),
		msg(`not json`),
		msg(`{"collection":"top_flights","path":"/c/top_flights/1.parquet","rows":10}`),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	r := &runner{ctx: ctx, out: &out}
	done := make(chan error)
	go func() { done <- printEvents(r, sub, "feed") }()

	select {
	case <-sub.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("events were not consumed")
	}
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 3, acked)
	assert.Contains(t, out.String(), "/c/feed/1.parquet")
	assert.NotContains(t, out.String(), "top_flights")
}
