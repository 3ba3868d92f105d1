package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli"

	"radar.pub/radar/internal/events"
	"radar.pub/radar/internal/mirror"
)

// publisher lazily connects to the configured topic. It returns nil when no
// topic is configured.
func (r *runner) publisher() (events.Publisher, error) {
	if r.cfg.PubSubTopic == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub != nil {
		return r.pub, nil
	}
	client, err := events.NewClient(r.ctx, r.cfg.PubSubProject, false)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureTopic(r.ctx, r.cfg.PubSubTopic); err != nil {
		client.Close()
		return nil, err
	}
	r.events = client
	r.pub = client.NewPublisher(r.cfg.PubSubTopic)
	return r.pub, nil
}

// upload mirrors the table at path, returning "" when mirroring is off.
func (r *runner) upload(path string) (string, error) {
	cfg, ok := r.cfg.Mirror()
	if !ok {
		return "", nil
	}
	r.mu.Lock()
	if r.mirror == nil {
		m, err := mirror.NewS3(r.ctx, cfg)
		if err != nil {
			r.mu.Unlock()
			return "", err
		}
		r.mirror = m
	}
	m := r.mirror
	r.mu.Unlock()
	return m.Upload(r.ctx, r.cfg.CacheDir, path)
}

// announce mirrors a written table and publishes its event. Failures are
// logged, the table is already safely on disk.
func (r *runner) announce(ev events.TableWritten) {
	metricTablesWritten.WithLabelValues(ev.Collection).Inc()
	metricRowsWritten.WithLabelValues(ev.Collection).Add(float64(ev.Rows))

	if url, err := r.upload(ev.Path); err != nil {
		metricMirrorErrors.Inc()
		slog.WarnContext(r.ctx, "failed to mirror table", "path", ev.Path, "error", err)
	} else {
		ev.MirrorURL = url
	}

	pub, err := r.publisher()
	if err == nil && pub != nil {
		ev.WrittenAt = time.Now().UTC()
		err = events.PublishTable(r.ctx, pub, ev)
	}
	if err != nil {
		metricPublishErrors.Inc()
		slog.WarnContext(r.ctx, "failed to announce table", "path", ev.Path, "error", err)
	}
}

func (r *runner) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pub != nil {
		r.pub.Close()
	}
	if r.events != nil {
		r.events.Close()
	}
}

// watchEvents prints table events from the configured subscription.
func (r *runner) watchEvents(c *cli.Context) error {
	sub := c.String("subscription")
	if sub == "" {
		sub = r.cfg.PubSubSubscription
	}
	if r.cfg.PubSubTopic == "" || sub == "" {
		return fmt.Errorf("events needs pubsub_topic and a subscription")
	}
	client, err := events.NewClient(r.ctx, r.cfg.PubSubProject, false)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.EnsureTopic(r.ctx, r.cfg.PubSubTopic); err != nil {
		return err
	}
	if err := client.EnsureSubscription(r.ctx, r.cfg.PubSubTopic, sub, c.Duration("ttl")); err != nil {
		return err
	}
	return printEvents(r, client.NewSubscriber(sub), c.String("collection"))
}

func printEvents(r *runner, sub events.Subscriber, collection string) error {
	defer sub.Close()
	enc := json.NewEncoder(r.out)
	for {
		msg, err := sub.Receive(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				return nil
			}
			return err
		}
		ev, err := events.DecodeTable(msg)
		if err != nil {
			slog.WarnContext(r.ctx, "dropping malformed table event", "id", msg.ID, "error", err)
			msg.Ack()
			continue
		}
		msg.Ack()
		if collection != "" && ev.Collection != collection {
			continue
		}
		if err := enc.Encode(&ev); err != nil {
			return err
		}
	}
}
