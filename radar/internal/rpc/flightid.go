package rpc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFlightID occurs when a flight id cannot be parsed.
var ErrInvalidFlightID = errors.New("rpc: invalid flight id")

// ParseFlightID parses a flight id as shown by the provider: hexadecimal,
// with or without a 0x prefix. Prefix with "#" to pass a decimal id.
func ParseFlightID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 16
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 10
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	id, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidFlightID, s, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalidFlightID)
	}
	return uint32(id), nil
}
