package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"

	"radar.pub/radar/internal/cache"
	"radar.pub/radar/internal/events"
	"radar.pub/radar/internal/mirror"
	"radar.pub/radar/internal/pb"
	"radar.pub/radar/internal/record"
	"radar.pub/radar/internal/rpc"
	"radar.pub/radar/internal/service"
)

// Version of radar being run
const Version = "v0.1.0"

// runner carries state shared by every command of one invocation.
type runner struct {
	ctx     context.Context
	in      io.Reader
	out     io.Writer
	options []func(*Config)
	cfg     *Config

	mu     sync.Mutex // guards the lazily built clients below
	events *events.Client
	pub    events.Publisher
	mirror *mirror.S3
}

func newApp(ctx context.Context, in io.Reader, out io.Writer, options ...func(*Config)) *cli.App {
	r := &runner{ctx: ctx, in: in, out: out, options: options}

	app := cli.NewApp()
	app.Name = "radar"
	app.Usage = "query live and historic flight data and cache it as tables"
	app.Version = Version
	app.Writer = out
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "YAML config file", EnvVar: EnvConfigPath.Key},
		cli.StringFlag{Name: "cache-dir", Usage: "root directory of the table cache"},
		cli.StringFlag{Name: "format", Usage: "cache format: parquet or jsonl"},
		cli.StringFlag{Name: "if-exists", Usage: "when a cached table exists: overwrite, backup or fail"},
		cli.StringFlag{Name: "base-url", Usage: "gRPC-Web host"},
		cli.StringFlag{Name: "api-base-url", Usage: "JSON API prefix"},
		cli.StringFlag{Name: "proxy", Usage: "http(s) or socks5 proxy URL"},
		cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address"},
	}
	app.Before = r.before
	app.After = func(*cli.Context) error {
		r.close()
		return nil
	}
	app.Commands = r.commands()
	return app
}

func (r *runner) before(c *cli.Context) error {
	options := append(append([]func(*Config){}, r.options...), ConfigureFromEnv(), configureFromFlags(c))
	cfg, err := LoadConfig(c.String("config"), options...)
	if err != nil {
		return err
	}
	r.cfg = cfg
	if cfg.MetricsAddr != "" {
		serveMetrics(r.ctx, cfg.MetricsAddr)
	}
	return nil
}

// configureFromFlags applies the global flags that were set explicitly.
func configureFromFlags(c *cli.Context) func(*Config) {
	return func(cfg *Config) {
		for flag, dst := range map[string]*string{
			"cache-dir":    &cfg.CacheDir,
			"format":       &cfg.Format,
			"if-exists":    &cfg.IfExists,
			"base-url":     &cfg.BaseURL,
			"api-base-url": &cfg.APIBaseURL,
			"proxy":        &cfg.Proxy,
			"metrics-addr": &cfg.MetricsAddr,
		} {
			if c.IsSet(flag) {
				*dst = c.String(flag)
			}
		}
	}
}

func (r *runner) client() (*service.Client, error) {
	return r.cfg.NewClient(r.ctx, false)
}

const flightIDHelp = `FLIGHT_ID is hexadecimal as the provider shows it, e.g. 2f8a3b1 or 0x2f8a3b1.
   A bare number such as 12345 is read as hex; write #12345 for a decimal id.`

var saveFlag = cli.BoolFlag{Name: "save", Usage: "write the table to the cache instead of printing rows"}

func boundsFlags(required bool) []cli.Flag {
	return []cli.Flag{
		cli.Float64Flag{Name: "south", Required: required},
		cli.Float64Flag{Name: "north", Required: required},
		cli.Float64Flag{Name: "west", Required: required},
		cli.Float64Flag{Name: "east", Required: required},
	}
}

var feedFlags = []cli.Flag{
	cli.IntFlag{Name: "limit", Usage: fmt.Sprintf("maximum flights (default %d)", rpc.DefaultLiveFeedLimit)},
	cli.IntFlag{Name: "max-age", Usage: "maximum position age in seconds"},
	cli.StringSliceFlag{Name: "field", Usage: "optional field to request, repeatable"},
	cli.BoolFlag{Name: "stats", Usage: "request per source statistics"},
	cli.StringFlag{Name: "restriction", Usage: "restricted aircraft visibility"},
}

func (r *runner) commands() []cli.Command {
	return []cli.Command{
		{
			Name:   "feed",
			Usage:  "live feed inside a bounding box",
			Flags:  concat(boundsFlags(true), feedFlags, []cli.Flag{saveFlag}),
			Action: r.feed,
		},
		{
			Name:  "world",
			Usage: "live feed over the whole globe",
			Flags: concat(feedFlags, []cli.Flag{
				cli.IntFlag{Name: "concurrency", Usage: "cells fetched at once"},
				saveFlag,
			}),
			Action: r.world,
		},
		{
			Name:  "playback-feed",
			Usage: "live feed inside a bounding box at a past time",
			Flags: concat(boundsFlags(true), feedFlags, []cli.Flag{
				cli.StringFlag{Name: "timestamp", Usage: "now, unix seconds or RFC 3339", Required: true},
				cli.DurationFlag{Name: "duration", Value: rpc.DefaultPlaybackDuration},
				cli.BoolFlag{Name: "hfreq", Usage: "high frequency positions"},
				saveFlag,
			}),
			Action: r.playbackFeed,
		},
		{
			Name:  "nearest",
			Usage: "flights nearest to a point",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "lat", Required: true},
				cli.Float64Flag{Name: "lon", Required: true},
				cli.UintFlag{Name: "radius", Usage: "metres", Value: rpc.DefaultNearestRadius},
				cli.UintFlag{Name: "limit", Value: rpc.DefaultNearestLimit},
				saveFlag,
			},
			Action: r.nearest,
		},
		{
			Name:        "status",
			Usage:       "current status of live flights",
			ArgsUsage:   "FLIGHT_ID...",
			Description: flightIDHelp,
			Flags:       []cli.Flag{saveFlag},
			Action:      r.status,
		},
		{
			Name:        "details",
			Usage:       "details of a live flight",
			ArgsUsage:   "FLIGHT_ID",
			Description: flightIDHelp,
			Flags: []cli.Flag{
				cli.BoolTFlag{Name: "verbose", Usage: "include trail and telemetry"},
				cli.StringFlag{Name: "restriction"},
				saveFlag,
			},
			Action: r.details,
		},
		{
			Name:        "playback-flight",
			Usage:       "details of a flight at a past time",
			ArgsUsage:   "FLIGHT_ID",
			Description: flightIDHelp,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "timestamp", Value: "now"},
				saveFlag,
			},
			Action: r.playbackFlight,
		},
		{
			Name:   "top",
			Usage:  "most followed flights",
			Flags:  []cli.Flag{cli.UintFlag{Name: "limit", Value: rpc.DefaultTopFlightsLimit}, saveFlag},
			Action: r.top,
		},
		{
			Name:        "follow",
			Usage:       "stream updates of a flight until interrupted",
			ArgsUsage:   "FLIGHT_ID",
			Description: flightIDHelp,
			Flags:       []cli.Flag{cli.StringFlag{Name: "restriction"}},
			Action:      r.follow,
		},
		{
			Name:   "search-index",
			Usage:  "flights of the search index",
			Action: r.searchIndex,
		},
		{
			Name:  "flight-list",
			Usage: "history of a registration or flight number",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "reg"},
				cli.StringFlag{Name: "flight"},
				cli.StringFlag{Name: "timestamp", Value: "now", Usage: "list flights scheduled before this time"},
				cli.IntFlag{Name: "page"},
				cli.IntFlag{Name: "limit"},
				cli.BoolFlag{Name: "all", Usage: "follow every page"},
				cli.IntFlag{Name: "max-pages", Value: service.DefaultMaxPages},
				cli.IntFlag{Name: "retries", Value: service.DefaultRetries},
				cli.DurationFlag{Name: "backoff", Value: service.DefaultBackoff},
				saveFlag,
			},
			Action: r.flightList,
		},
		{
			Name:        "playback",
			Usage:       "recorded track of a flight",
			ArgsUsage:   "FLIGHT_ID",
			Description: flightIDHelp,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "timestamp", Value: "now", Usage: "scheduled departure"},
				saveFlag,
			},
			Action: r.playback,
		},
		{
			Name:  "record",
			Usage: "save live feed snapshots on a schedule",
			Flags: concat(boundsFlags(false), feedFlags, []cli.Flag{
				cli.StringFlag{Name: "schedule", Value: "@every 1m", Usage: "cron spec or descriptor"},
				cli.BoolFlag{Name: "world", Usage: "snapshot the whole globe instead of a bounding box"},
				cli.IntFlag{Name: "count", Usage: "stop after this many snapshots (0 runs until interrupted)"},
			}),
			Action: r.record,
		},
		{
			Name:  "login",
			Usage: "exchange an email and password for a token and save it",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "username", Usage: "account email, prompted for when empty"},
				cli.StringFlag{Name: "credentials", Usage: "file to write (defaults to the configured credentials path)"},
			},
			Action: r.login,
		},
		{
			Name:  "events",
			Usage: "print table events from the configured Pub/Sub topic",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "subscription", Usage: "subscription to read (defaults to pubsub_subscription)"},
				cli.StringFlag{Name: "collection", Usage: "only print events of this collection"},
				cli.DurationFlag{Name: "ttl", Usage: "expire a newly created subscription after this much inactivity"},
			},
			Action: r.watchEvents,
		},
		{
			Name:  "cache",
			Usage: "inspect the table cache",
			Subcommands: []cli.Command{
				{
					Name:      "ls",
					Usage:     "list cached tables",
					ArgsUsage: "[COLLECTION [PATTERN]]",
					Action:    r.cacheList,
				},
				{
					Name:      "cat",
					Usage:     "print the rows of cached tables",
					ArgsUsage: "COLLECTION [PATTERN]",
					Action:    r.cacheCat,
				},
			},
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

func bounds(c *cli.Context) rpc.BoundingBox {
	return rpc.BoundingBox{
		South: c.Float64("south"),
		North: c.Float64("north"),
		West:  c.Float64("west"),
		East:  c.Float64("east"),
	}
}

func restriction(c *cli.Context) (pb.RestrictionVisibility, error) {
	if !c.IsSet("restriction") {
		return pb.RestrictionVisibility_NOT_VISIBLE, nil
	}
	return pb.ParseRestrictionVisibility(c.String("restriction"))
}

func feedParams(c *cli.Context) (rpc.LiveFeedParams, error) {
	p := rpc.LiveFeedParams{
		Bounds: bounds(c),
		Stats:  c.Bool("stats"),
		Limit:  c.Int("limit"),
		MaxAge: c.Int("max-age"),
	}
	for _, f := range c.StringSlice("field") {
		for _, name := range strings.Split(f, ",") {
			p.Fields = append(p.Fields, pb.Field(name))
		}
	}
	var err error
	p.Restriction, err = restriction(c)
	return p, err
}

func flightIDArg(c *cli.Context) (uint32, error) {
	if c.NArg() != 1 {
		return 0, fmt.Errorf("expected one FLIGHT_ID, got %d arguments", c.NArg())
	}
	return parseFlightID(c.Args().First())
}

func parseFlightID(s string) (uint32, error) {
	id, err := rpc.ParseFlightID(s)
	if err != nil {
		return 0, fmt.Errorf("%w (ids are hex, prefix decimal ids with #)", err)
	}
	return id, nil
}

// emit prints the rows of res as JSON lines, or saves its table with --save.
func emit[Q service.Keyed, R, T any](c *cli.Context, r *runner, res *service.Result[Q, R, T]) error {
	if !c.Bool("save") {
		return r.printRows(res.Records())
	}
	key, err := res.CacheKey()
	if err != nil {
		return err
	}
	opts, err := r.cfg.WriteOptions()
	if err != nil {
		return err
	}
	path, err := res.WriteTable(r.ctx, r.cfg.Cache(), opts)
	if err != nil {
		return err
	}
	r.announce(events.TableWritten{
		Collection: string(key.Collection()),
		Path:       path,
		Format:     opts.Format.String(),
		Rows:       len(res.Records()),
	})
	fmt.Fprintln(r.out, path)
	return nil
}

func (r *runner) printRows(rows any) error {
	enc := json.NewEncoder(r.out)
	switch rows := rows.(type) {
	case []record.FeedFlight:
		return encodeAll(enc, rows)
	case []record.NearestFlight:
		return encodeAll(enc, rows)
	case []record.FlightStatus:
		return encodeAll(enc, rows)
	case []record.TopFlight:
		return encodeAll(enc, rows)
	case []record.FlightDetails:
		return encodeAll(enc, rows)
	case []record.FlightListEntry:
		return encodeAll(enc, rows)
	case []record.TrackPoint:
		return encodeAll(enc, rows)
	}
	return enc.Encode(rows)
}

func encodeAll[T any](enc *json.Encoder, rows []T) error {
	for i := range rows {
		if err := enc.Encode(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) feed(c *cli.Context) error {
	params, err := feedParams(c)
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.LiveFeed.Fetch(r.ctx, params)
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) world(c *cli.Context) error {
	params, err := feedParams(c)
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	concurrency := r.cfg.WorldConcurrency
	if c.IsSet("concurrency") {
		concurrency = c.Int("concurrency")
	}
	res, err := client.WorldFeed(r.ctx, params, service.WorldOptions{Concurrency: concurrency})
	if err != nil {
		return err
	}
	if res.Partial != nil {
		slog.Warn("world feed incomplete", "failed_cells", res.Partial.Failed(), "cells", res.Cells)
	}
	if !c.Bool("save") {
		return r.printRows(res.Flights)
	}
	return r.saveWorld(res)
}

func (r *runner) saveWorld(res *service.WorldResult) error {
	opts, err := r.cfg.WriteOptions()
	if err != nil {
		return err
	}
	path, err := res.WriteTable(r.ctx, r.cfg.Cache(), opts)
	if err != nil {
		return err
	}
	r.announce(events.TableWritten{
		Collection: string(cache.CollectionFeed),
		Path:       path,
		Format:     opts.Format.String(),
		Rows:       len(res.Flights),
		Partial:    res.Partial != nil,
	})
	fmt.Fprintln(r.out, path)
	return nil
}

func (r *runner) playbackFeed(c *cli.Context) error {
	feed, err := feedParams(c)
	if err != nil {
		return err
	}
	ts, err := rpc.ParseTimestamp(c.String("timestamp"))
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.LiveFeedPlayback.Fetch(r.ctx, rpc.LiveFeedPlaybackParams{
		LiveFeed:  feed,
		Timestamp: ts,
		Duration:  c.Duration("duration"),
		HFreq:     c.Bool("hfreq"),
	})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) nearest(c *cli.Context) error {
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.NearestFlights.Fetch(r.ctx, rpc.NearestFlightsParams{
		Lat:    c.Float64("lat"),
		Lon:    c.Float64("lon"),
		Radius: uint32(c.Uint("radius")),
		Limit:  uint32(c.Uint("limit")),
	})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) status(c *cli.Context) error {
	var ids []uint32
	for _, arg := range c.Args() {
		id, err := parseFlightID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.LiveFlightsStatus.Fetch(r.ctx, rpc.LiveFlightsStatusParams{FlightIDs: ids})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) details(c *cli.Context) error {
	id, err := flightIDArg(c)
	if err != nil {
		return err
	}
	mode, err := restriction(c)
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.FlightDetails.Fetch(r.ctx, rpc.FlightDetailsParams{
		FlightID:    id,
		Restriction: mode,
		Verbose:     c.BoolT("verbose"),
	})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) playbackFlight(c *cli.Context) error {
	id, err := flightIDArg(c)
	if err != nil {
		return err
	}
	ts, err := rpc.ParseTimestamp(c.String("timestamp"))
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.PlaybackFlight.Fetch(r.ctx, rpc.PlaybackFlightParams{FlightID: id, Timestamp: ts})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) top(c *cli.Context) error {
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.TopFlights.Fetch(r.ctx, rpc.TopFlightsParams{Limit: uint32(c.Uint("limit"))})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) follow(c *cli.Context) error {
	id, err := flightIDArg(c)
	if err != nil {
		return err
	}
	mode, err := restriction(c)
	if err != nil {
		return err
	}
	client, err := r.cfg.NewClient(r.ctx, true)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(r.out)
	for msg, err := range client.FollowFlight.Stream(r.ctx, rpc.FollowFlightParams{FlightID: id, Restriction: mode}) {
		if err != nil {
			return err
		}
		update := record.FollowUpdate(msg)
		if err := enc.Encode(&update); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) searchIndex(c *cli.Context) error {
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.FetchSearchIndex.Fetch(r.ctx, rpc.FetchSearchIndexParams{})
	if err != nil {
		return err
	}
	return r.printRows(res.Records())
}

func (r *runner) flightList(c *cli.Context) error {
	var params rpc.FlightListParams
	switch {
	case c.IsSet("reg") == c.IsSet("flight"):
		return fmt.Errorf("exactly one of --reg or --flight is required")
	case c.IsSet("reg"):
		params.Kind, params.Ident = cache.FlightListReg, c.String("reg")
	default:
		params.Kind, params.Ident = cache.FlightListFlight, c.String("flight")
	}
	ts, err := rpc.ParseTimestamp(c.String("timestamp"))
	if err != nil {
		return err
	}
	params.Timestamp = ts
	params.Page = c.Int("page")
	params.Limit = c.Int("limit")

	client, err := r.client()
	if err != nil {
		return err
	}
	if !c.Bool("all") {
		res, err := client.FlightList.Fetch(r.ctx, params)
		if err != nil {
			return err
		}
		return emit(c, r, res)
	}
	res, err := client.FlightList.FetchAll(r.ctx, params, service.FetchAllOptions{
		MaxPages: c.Int("max-pages"),
		Retries:  c.Int("retries"),
		Backoff:  c.Duration("backoff"),
	})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) playback(c *cli.Context) error {
	id, err := flightIDArg(c)
	if err != nil {
		return err
	}
	ts, err := rpc.ParseTimestamp(c.String("timestamp"))
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	res, err := client.Playback.Fetch(r.ctx, rpc.PlaybackParams{FlightID: id, Timestamp: ts})
	if err != nil {
		return err
	}
	return emit(c, r, res)
}

func (r *runner) record(c *cli.Context) error {
	params, err := feedParams(c)
	if err != nil {
		return err
	}
	world := c.Bool("world")
	if !world {
		if err := params.Bounds.Validate(); err != nil {
			return fmt.Errorf("record needs --world or a bounding box: %w", err)
		}
	}
	opts, err := r.cfg.WriteOptions()
	if err != nil {
		return err
	}
	client, err := r.client()
	if err != nil {
		return err
	}
	store := r.cfg.Cache()

	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()
	limit := c.Int("count")
	snapshots := make(chan struct{}, 1)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(c.String("schedule"), func() {
		ev, err := r.snapshot(ctx, client, store, params, world, opts)
		if err != nil {
			metricSnapshotErrors.Inc()
			slog.ErrorContext(ctx, "record: snapshot failed", "error", err)
		} else {
			r.announce(ev)
			slog.InfoContext(ctx, "record: snapshot saved", "path", ev.Path, "rows", ev.Rows)
		}
		select {
		case snapshots <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.String("schedule"), err)
	}

	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()
	slog.InfoContext(ctx, "record: started", "schedule", c.String("schedule"), "world", world, "cache", store.Root())

	for n := 0; limit == 0 || n < limit; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-snapshots:
		}
	}
	return nil
}

func (r *runner) snapshot(ctx context.Context, client *service.Client, store *cache.Cache, params rpc.LiveFeedParams, world bool, opts cache.WriteOptions) (events.TableWritten, error) {
	ev := events.TableWritten{Collection: string(cache.CollectionFeed), Format: opts.Format.String()}
	var err error
	if world {
		var res *service.WorldResult
		res, err = client.WorldFeed(ctx, params, service.WorldOptions{Concurrency: r.cfg.WorldConcurrency})
		if err != nil {
			return ev, err
		}
		ev.Rows, ev.Partial = len(res.Flights), res.Partial != nil
		ev.Path, err = res.WriteTable(ctx, store, opts)
		return ev, err
	}
	res, err := client.LiveFeed.Fetch(ctx, params)
	if err != nil {
		return ev, err
	}
	ev.Rows = len(res.Records())
	ev.Path, err = res.WriteTable(ctx, store, opts)
	return ev, err
}

func (r *runner) cacheList(c *cli.Context) error {
	collections := cache.Collections
	if c.NArg() > 0 {
		collections = []cache.Collection{cache.Collection(c.Args().Get(0))}
	}
	store := r.cfg.Cache()

	w := tabwriter.NewWriter(r.out, 8, 8, 1, '\t', 0)
	defer w.Flush()
	for _, collection := range collections {
		files, err := store.Glob(collection, c.Args().Get(1))
		if err != nil {
			return err
		}
		for _, f := range files {
			info, err := os.Stat(f.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", collection, f.Name, f.Format, info.Size(), info.ModTime().UTC().Format(time.RFC3339))
		}
	}
	return nil
}

func (r *runner) cacheCat(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected COLLECTION [PATTERN]")
	}
	collection := cache.Collection(c.Args().Get(0))
	if !slices.Contains(cache.Collections, collection) {
		return fmt.Errorf("unknown collection %q", collection)
	}
	files, err := r.cfg.Cache().Glob(collection, c.Args().Get(1))
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := r.dumpFile(f); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}

func (r *runner) dumpFile(f cache.File) error {
	switch f.Collection {
	case cache.CollectionFeed:
		return dump(r, f, record.FeedFlightSchema)
	case cache.CollectionNearestFlights:
		return dump(r, f, record.NearestFlightSchema)
	case cache.CollectionLiveFlightsStatus:
		return dump(r, f, record.FlightStatusSchema)
	case cache.CollectionTopFlights:
		return dump(r, f, record.TopFlightSchema)
	case cache.CollectionFlightDetails, cache.CollectionPlaybackFlight:
		return dump(r, f, record.FlightDetailsSchema)
	case cache.CollectionFlightListReg, cache.CollectionFlightListFlight:
		return dump(r, f, record.FlightListSchema)
	case cache.CollectionPlayback:
		return dump(r, f, record.TrackPointSchema)
	}
	return fmt.Errorf("unknown collection %q", f.Collection)
}

func dump[T any](r *runner, f cache.File, schema *record.Schema[T]) error {
	sc, err := f.Scan(r.ctx, schema)
	if err != nil {
		return err
	}
	rows, err := cache.Collect(sc, schema.Rows)
	if err != nil {
		return err
	}
	return encodeAll(json.NewEncoder(r.out), rows)
}
