package grpcweb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const readChunkSize = 32 * 1024 // 32KB

// extractFrame extracts a complete frame from the buffer.
// Returns (header, message, remainingBuffer, ok)
func extractFrame(buffer []byte) (frameHeader, []byte, []byte, bool) {
	header, ok := tryDecode(buffer)
	if !ok {
		return frameHeader{}, nil, buffer, false
	}

	totalSize := frameHeaderSize + int(header.MessageLength)
	if len(buffer) < totalSize {
		return frameHeader{}, nil, buffer, false
	}

	return header, buffer[frameHeaderSize:totalSize], buffer[totalSize:], true
}

// FrameReader splits a streamed response body into DATA frames.
//
// Bytes are accumulated until a complete frame is available, so frames may
// span any number of reads and a single read may carry several frames.
// A trailer frame ends the stream; its contents are not inspected.
type FrameReader struct {
	r      io.Reader
	buffer []byte
	eof    bool
	done   bool
}

// NewFrameReader returns a FrameReader reading from r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Next returns the payload of the next DATA frame.
// It returns io.EOF once the body or a trailer frame has been reached.
func (fr *FrameReader) Next() ([]byte, error) {
	if fr.done {
		return nil, io.EOF
	}
	readBuf := make([]byte, readChunkSize)

	for {
		if header, ok := tryDecode(fr.buffer); ok {
			if header.Flag&flagTrailer != 0 {
				fr.done = true
				return nil, io.EOF
			}
			if err := checkStreamHeader(header); err != nil {
				fr.done = true
				return nil, err
			}
		}

		header, message, remaining, ok := extractFrame(fr.buffer)
		if ok {
			fr.buffer = remaining
			if header.MessageLength == 0 {
				fr.done = true
				return nil, ErrEmptyPayload
			}
			return bytes.Clone(message), nil
		}

		if fr.eof {
			fr.done = true
			if len(fr.buffer) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: stream ended with %d buffered bytes: %w", ErrMalformedFrame, len(fr.buffer), io.ErrUnexpectedEOF)
		}

		n, readErr := fr.r.Read(readBuf)
		if n > 0 {
			fr.buffer = append(fr.buffer, readBuf[:n]...)
		}
		if errors.Is(readErr, io.EOF) {
			fr.eof = true
			continue
		}
		if readErr != nil {
			fr.done = true
			return nil, readErr
		}
	}
}

// Decode reads the next DATA frame into m.
func (fr *FrameReader) Decode(m Message) error {
	payload, err := fr.Next()
	if err != nil {
		return err
	}
	if err := m.Unmarshal(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

func checkStreamHeader(header frameHeader) error {
	switch {
	case header.Flag == flagCompressed:
		return ErrUnsupportedCompression
	case header.Flag != flagUncompressed:
		return fmt.Errorf("%w: unexpected flag 0x%02x", ErrMalformedFrame, header.Flag)
	case header.MessageLength > maxFrameLength:
		return fmt.Errorf("%w: declared length %d exceeds limit", ErrMalformedFrame, header.MessageLength)
	}
	return nil
}
