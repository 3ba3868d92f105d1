// Package grpcweb implements the length-prefixed DATA frames used by the
// provider's gRPC-Web endpoints.
package grpcweb

import (
	"encoding/binary"
	"fmt"
)

// frameHeaderSize is the size of a gRPC-Web frame header: [flag(1)][length(4)]
const frameHeaderSize = 5

// maxFrameLength bounds the declared payload size of a single frame.
const maxFrameLength = 64 * 1024 * 1024

const (
	flagUncompressed uint8 = 0x00
	flagCompressed   uint8 = 0x01
	flagTrailer      uint8 = 0x80
)

// Message is a protobuf message that knows its own binary encoding.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// frameHeader represents a gRPC-Web frame header
type frameHeader struct {
	Flag          uint8
	MessageLength uint32
}

func newFrameHeader(messageLength uint32) frameHeader {
	return frameHeader{
		Flag:          flagUncompressed,
		MessageLength: messageLength,
	}
}

// Encode encodes the frame header to a 5-byte array
func (h frameHeader) Encode() [frameHeaderSize]byte {
	var header [frameHeaderSize]byte
	header[0] = h.Flag
	binary.BigEndian.PutUint32(header[1:], h.MessageLength)
	return header
}

// tryDecode attempts to decode a frame header from the buffer.
// Returns (header, ok) where ok indicates if enough data was available.
func tryDecode(buffer []byte) (frameHeader, bool) {
	if len(buffer) < frameHeaderSize {
		return frameHeader{}, false
	}
	return frameHeader{
		Flag:          buffer[0],
		MessageLength: binary.BigEndian.Uint32(buffer[1:frameHeaderSize]),
	}, true
}

// Frame wraps an already serialized payload in an uncompressed DATA frame.
func Frame(payload []byte) []byte {
	header := newFrameHeader(uint32(len(payload))).Encode()
	frame := make([]byte, 0, frameHeaderSize+len(payload))
	frame = append(frame, header[:]...)
	return append(frame, payload...)
}

// Encode serializes m and wraps it in a single uncompressed DATA frame.
func Encode(m Message) ([]byte, error) {
	payload, err := m.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if len(payload) > maxFrameLength {
		return nil, fmt.Errorf("message too large for a single frame: %d bytes", len(payload))
	}
	return Frame(payload), nil
}

// Payload validates a single DATA frame and returns its payload bytes.
// Bytes after the declared payload (e.g. a trailer frame) are ignored.
func Payload(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	switch frame[0] {
	case flagUncompressed:
	case flagCompressed:
		return nil, ErrUnsupportedCompression
	default:
		return nil, fmt.Errorf("%w: unexpected flag 0x%02x", ErrMalformedFrame, frame[0])
	}

	header, ok := tryDecode(frame)
	if !ok {
		return nil, fmt.Errorf("%w: header truncated to %d bytes", ErrMalformedFrame, len(frame))
	}
	if header.MessageLength == 0 {
		return nil, ErrEmptyPayload
	}
	if header.MessageLength > maxFrameLength {
		return nil, fmt.Errorf("%w: declared length %d exceeds limit", ErrMalformedFrame, header.MessageLength)
	}

	end := frameHeaderSize + int(header.MessageLength)
	if len(frame) < end {
		return nil, fmt.Errorf("%w: declared %d payload bytes, got %d", ErrMalformedFrame, header.MessageLength, len(frame)-frameHeaderSize)
	}
	return frame[frameHeaderSize:end], nil
}

// Decode parses exactly one DATA frame into m.
func Decode(frame []byte, m Message) error {
	payload, err := Payload(frame)
	if err != nil {
		return err
	}
	if err := m.Unmarshal(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

// DecodeInto parses one DATA frame into a newly allocated T.
func DecodeInto[T any, PT interface {
	*T
	Message
}](frame []byte) (*T, error) {
	msg := PT(new(T))
	if err := Decode(frame, msg); err != nil {
		return nil, err
	}
	return (*T)(msg), nil
}
