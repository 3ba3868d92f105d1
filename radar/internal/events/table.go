package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Attribute keys set on every table event, usable in subscription filters.
const (
	AttrCollection = "collection"
	AttrFormat     = "format"
)

// TableWritten announces one table stored in the cache.
type TableWritten struct {
	Collection string    `json:"collection"`
	Path       string    `json:"path"`
	Format     string    `json:"format"`
	Rows       int       `json:"rows"`
	WrittenAt  time.Time `json:"written_at"`
	// Partial is set when a world snapshot is missing some cells.
	Partial bool `json:"partial,omitempty"`
	// MirrorURL locates the uploaded copy, when tables are mirrored.
	MirrorURL string `json:"mirror_url,omitempty"`
}

// PublishTable sends ev to p.
func PublishTable(ctx context.Context, p Publisher, ev TableWritten) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: encode table event: %w", err)
	}
	attrs := map[string]string{
		AttrCollection: ev.Collection,
		AttrFormat:     ev.Format,
	}
	if err := p.Publish(ctx, body, attrs); err != nil {
		return fmt.Errorf("events: publish %s: %w", ev.Path, err)
	}
	return nil
}

// DecodeTable parses the body of a table event.
func DecodeTable(msg *Message) (TableWritten, error) {
	var ev TableWritten
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return TableWritten{}, fmt.Errorf("events: decode message %s: %w", msg.ID, err)
	}
	return ev, nil
}
