package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(ctx, "test-project", true)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.EnsureTopic(ctx, "tables"))
	require.NoError(t, client.EnsureTopic(ctx, "tables"), "ensuring twice is a no-op")
	require.NoError(t, client.EnsureSubscription(ctx, "tables", "tables-sub", 0))
	require.NoError(t, client.EnsureSubscription(ctx, "tables", "tables-sub", time.Hour))

	sub := client.NewSubscriber("tables-sub")
	defer sub.Close()
	pub := client.NewPublisher("tables")
	defer pub.Close()

	sent := TableWritten{
		Collection: "feed",
		Path:       "/cache/feed/1700000000.parquet",
		Format:     "parquet",
		Rows:       42,
		WrittenAt:  time.Unix(1700000001, 0).UTC(),
	}
	require.NoError(t, PublishTable(ctx, pub, sent))

	msg, err := sub.Receive(ctx)
	require.NoError(t, err)
	msg.Ack()

	assert.Equal(t, "feed", msg.Attributes[AttrCollection])
	assert.Equal(t, "parquet", msg.Attributes[AttrFormat])

	got, err := DecodeTable(msg)
	require.NoError(t, err)
	assert.Equal(t, sent.Path, got.Path)
	assert.Equal(t, sent.Rows, got.Rows)
	assert.True(t, sent.WrittenAt.Equal(got.WrittenAt))
	assert.False(t, got.Partial)
}

func TestDecodeTableInvalid(t *testing.T) {
	_, err := DecodeTable(&Message{ID: "1", Body: []byte("{")})
	assert.Error(t, err)
}

func TestReceiveCancelled(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, "test-project", true)
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, client.EnsureTopic(ctx, "idle"))
	require.NoError(t, client.EnsureSubscription(ctx, "idle", "idle-sub", 0))

	sub := client.NewSubscriber("idle-sub")
	defer sub.Close()

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = sub.Receive(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
