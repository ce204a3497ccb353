package codec

import (
	"chat-relay/errors"
	"encoding/binary"
	"fmt"
	"io"
)

// frameHeaderLength is the size of the big-endian uint32 payload length
// that precedes every frame on the stream.
const frameHeaderLength = 4

// DefaultMaxFrameSize bounds a single payload. Chat frames are short; a
// larger declared length means the peer is broken or hostile.
const DefaultMaxFrameSize = 4096

// WriteFrame writes [4 bytes payload length, big-endian][payload] in a
// single Write call so concurrent writers never interleave headers.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, frameHeaderLength+len(payload))
	binary.BigEndian.PutUint32(buf[:frameHeaderLength], uint32(len(payload)))
	copy(buf[frameHeaderLength:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one framed payload from r. A peer that closes cleanly
// between frames yields an error matching io.EOF.
// A declared length above maxSize returns ErrFrameTooLarge: the stream
// cannot be resynchronized after that, so callers must drop the connection.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var header [frameHeaderLength]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:])
	if maxSize > 0 && uint64(length) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d bytes exceeds maximum %d", errors.ErrFrameTooLarge, length, maxSize)
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return payload, nil
}

// CutFrame takes one complete frame off the front of buf. ok is false while
// buf still holds only part of a frame; the caller keeps it and reads more.
func CutFrame(buf []byte, maxSize int) (payload, rest []byte, ok bool, err error) {
	if len(buf) < frameHeaderLength {
		return nil, buf, false, nil
	}
	length := binary.BigEndian.Uint32(buf[:frameHeaderLength])
	if maxSize > 0 && uint64(length) > uint64(maxSize) {
		return nil, buf, false, fmt.Errorf("%w: %d bytes exceeds maximum %d", errors.ErrFrameTooLarge, length, maxSize)
	}
	end := frameHeaderLength + int(length)
	if len(buf) < end {
		return nil, buf, false, nil
	}
	payload = make([]byte, length)
	copy(payload, buf[frameHeaderLength:end])
	return payload, buf[end:], true, nil
}
