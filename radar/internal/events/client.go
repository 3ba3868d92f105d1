// Package events announces cached tables on a Pub/Sub topic so downstream
// jobs can pick them up without polling the cache directory.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

// Publisher sends raw messages to one topic.
type Publisher interface {
	Publish(ctx context.Context, body []byte, attributes map[string]string) error
	Close()
}

// Subscriber receives raw messages from one subscription.
type Subscriber interface {
	Receive(ctx context.Context) (*Message, error)
	Close()
}

// Message is one received Pub/Sub message. Callers must Ack or Nack it.
type Message struct {
	ID         string
	Body       []byte
	Attributes map[string]string
	Ack        func()
	Nack       func()
}

// Client wraps a Pub/Sub client, optionally backed by an in-memory server.
type Client struct {
	client *pubsub.Client
	srv    *pstest.Server
}

// NewClient connects to Pub/Sub in projectID. With inMemory set it starts a
// local pstest server instead, which is only useful for tests and dry runs.
func NewClient(ctx context.Context, projectID string, inMemory bool) (*Client, error) {
	if !inMemory {
		client, err := pubsub.NewClient(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("events: connect to pubsub: %w", err)
		}
		return &Client{client: client}, nil
	}

	srv := pstest.NewServer()
	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("events: dial pstest server: %w", err)
	}
	client, err := pubsub.NewClient(ctx, projectID, option.WithGRPCConn(conn), option.WithEndpoint(srv.Addr), option.WithoutAuthentication())
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("events: create pubsub client: %w", err)
	}
	return &Client{client: client, srv: srv}, nil
}

func (c *Client) Close() error {
	err := c.client.Close()
	if c.srv != nil {
		c.srv.Close()
	}
	return err
}

func (c *Client) topicName(topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", c.client.Project(), topicID)
}

// EnsureTopic creates topicID unless it already exists.
func (c *Client) EnsureTopic(ctx context.Context, topicID string) error {
	name := c.topicName(topicID)
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: name})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("events: get topic %s: %w", topicID, err)
	}
	_, err = c.client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: name})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("events: create topic %s: %w", topicID, err)
	}
	return nil
}

// EnsureSubscription creates subID on topicID unless it already exists. A
// positive ttl expires the subscription after that much inactivity.
func (c *Client) EnsureSubscription(ctx context.Context, topicID, subID string, ttl time.Duration) error {
	name := fmt.Sprintf("projects/%s/subscriptions/%s", c.client.Project(), subID)
	_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: name})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("events: get subscription %s: %w", subID, err)
	}

	sub := &pubsubpb.Subscription{Name: name, Topic: c.topicName(topicID)}
	if ttl > 0 {
		sub.ExpirationPolicy = &pubsubpb.ExpirationPolicy{Ttl: durationpb.New(ttl)}
	}
	_, err = c.client.SubscriptionAdminClient.CreateSubscription(ctx, sub)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("events: create subscription %s: %w", subID, err)
	}
	return nil
}

func (c *Client) NewPublisher(topicID string) Publisher {
	return &gcpPublisher{topic: c.client.Publisher(topicID)}
}

func (c *Client) NewSubscriber(subID string) Subscriber {
	return &gcpSubscriber{
		sub: c.client.Subscriber(subID),
		ch:  make(chan *Message, 100),
	}
}

type gcpPublisher struct {
	topic *pubsub.Publisher
}

// Publish blocks until the server acknowledges the message.
func (p *gcpPublisher) Publish(ctx context.Context, body []byte, attributes map[string]string) error {
	res := p.topic.Publish(ctx, &pubsub.Message{Data: body, Attributes: attributes})
	_, err := res.Get(ctx)
	return err
}

func (p *gcpPublisher) Close() { p.topic.Stop() }

type gcpSubscriber struct {
	sub    *pubsub.Subscriber
	ch     chan *Message
	cancel context.CancelFunc
	once   sync.Once
}

func (s *gcpSubscriber) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		_ = s.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
			wrapped := &Message{
				ID:         msg.ID,
				Body:       msg.Data,
				Attributes: msg.Attributes,
				Ack:        msg.Ack,
				Nack:       msg.Nack,
			}
			select {
			case s.ch <- wrapped:
			case <-ctx.Done():
				msg.Nack()
			}
		})
		close(s.ch)
	}()
}

// Receive waits for the next message. The first call starts the stream.
func (s *gcpSubscriber) Receive(ctx context.Context) (*Message, error) {
	s.once.Do(s.start)
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, fmt.Errorf("events: subscription closed")
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gcpSubscriber) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
