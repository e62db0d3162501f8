package server

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// frameHeaderSize is the size of the big-endian length prefix.
const frameHeaderSize = 4

// ErrFrameTooLarge is returned by ReadFrame when a peer announces a frame
// larger than the configured limit.
var ErrFrameTooLarge = errors.New("frame too large")

// ReadFrame reads one length-prefixed frame from r. The announced length must
// not exceed maxSize. A clean EOF before the header is returned as io.EOF.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if uint64(size) > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFrameTooLarge, size, maxSize)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes payload to w prefixed with its length, in a single Write.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[frameHeaderSize:], payload)

	_, err := w.Write(buf)
	return err
}
