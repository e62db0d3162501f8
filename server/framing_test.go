package server

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrame_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("hello")))

	raw := buf.Bytes()
	require.Len(t, raw, frameHeaderSize+5)
	assert.Equal(t, uint32(5), binary.BigEndian.Uint32(raw[:frameHeaderSize]))
	assert.Equal(t, "hello", string(raw[frameHeaderSize:]))
}

func TestReadFrame_Sequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("a")))
	require.NoError(t, WriteFrame(&buf, nil))
	require.NoError(t, WriteFrame(&buf, []byte("bcd")))

	first, err := ReadFrame(&buf, 16)
	require.NoError(t, err)
	assert.Equal(t, "a", string(first))

	empty, err := ReadFrame(&buf, 16)
	require.NoError(t, err)
	assert.Empty(t, empty)

	last, err := ReadFrame(&buf, 16)
	require.NoError(t, err)
	assert.Equal(t, "bcd", string(last))

	_, err = ReadFrame(&buf, 16)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame_Errors(t *testing.T) {
	oversized := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(oversized, 17)

	truncated := make([]byte, frameHeaderSize, frameHeaderSize+2)
	binary.BigEndian.PutUint32(truncated, 5)
	truncated = append(truncated, 'h', 'i')

	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{name: "frame above limit", input: oversized, wantErr: ErrFrameTooLarge},
		{name: "truncated payload", input: truncated, wantErr: io.ErrUnexpectedEOF},
		{name: "truncated header", input: []byte{0, 0}, wantErr: io.ErrUnexpectedEOF},
		{name: "empty stream", input: nil, wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.input), 16)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
