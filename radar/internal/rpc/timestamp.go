package rpc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnresolvedTimestamp occurs when an absolute time is required but the
// timestamp is still the symbolic "now".
var ErrUnresolvedTimestamp = errors.New("rpc: timestamp is not resolved")

// Timestamp is either an absolute Unix time in seconds or the symbolic
// "now". The zero value is "now".
type Timestamp struct {
	unix int64
	set  bool
}

// Now is the symbolic current time.
var Now = Timestamp{}

// At returns the absolute timestamp unix.
func At(unix int64) Timestamp {
	return Timestamp{unix: unix, set: true}
}

// ParseTimestamp accepts "now", Unix seconds, an RFC 3339 time or a date.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return Now, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return positive(n)
	}
	for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return positive(t.Unix())
		}
	}
	return Timestamp{}, fmt.Errorf("rpc: invalid timestamp %q: want now, unix seconds or RFC 3339", s)
}

func positive(unix int64) (Timestamp, error) {
	if unix <= 0 {
		return Timestamp{}, fmt.Errorf("rpc: timestamp %d must be after the Unix epoch", unix)
	}
	return At(unix), nil
}

// IsNow reports whether t is the symbolic current time.
func (t Timestamp) IsNow() bool { return !t.set }

// Unix returns the absolute time and whether t is resolved.
func (t Timestamp) Unix() (int64, bool) { return t.unix, t.set }

// Resolve replaces "now" with now. Absolute timestamps are returned unchanged.
func (t Timestamp) Resolve(now time.Time) Timestamp {
	if t.set {
		return t
	}
	return At(now.Unix())
}

// Time returns t as a time, or the zero time when unresolved.
func (t Timestamp) Time() time.Time {
	if !t.set {
		return time.Time{}
	}
	return time.Unix(t.unix, 0).UTC()
}

func (t Timestamp) String() string {
	if !t.set {
		return "now"
	}
	return strconv.FormatInt(t.unix, 10)
}

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Timestamp) UnmarshalText(b []byte) error {
	parsed, err := ParseTimestamp(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) resolved() (uint64, error) {
	if !t.set {
		return 0, ErrUnresolvedTimestamp
	}
	if t.unix <= 0 {
		return 0, invalid("timestamp %d must be after the Unix epoch", t.unix)
	}
	return uint64(t.unix), nil
}
