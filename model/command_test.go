package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr bool
	}{
		{name: "publisher", line: "pub room1\r\n", want: Command{Role: RolePublisher, Tag: "room1"}},
		{name: "subscriber", line: "sub room1\n", want: Command{Role: RoleSubscriber, Tag: "room1"}},
		{name: "extra whitespace", line: "  sub \t room-2  \r\n", want: Command{Role: RoleSubscriber, Tag: "room-2"}},
		{name: "quit", line: "quit\r\n", want: Command{Role: RoleQuit}},
		{name: "unknown role", line: "get room1\r\n", wantErr: true},
		{name: "missing tag", line: "pub\r\n", wantErr: true},
		{name: "quit with tag", line: "quit room1\r\n", wantErr: true},
		{name: "too many tokens", line: "pub room1 hello\r\n", wantErr: true},
		{name: "uppercase role", line: "PUB room1\r\n", wantErr: true},
		{name: "tag too long", line: "pub " + strings.Repeat("x", MaxTagLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Empty(t *testing.T) {
	_, err := ParseCommand(" \r\n")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestValidateTag(t *testing.T) {
	assert.NoError(t, ValidateTag("room1"))
	assert.NoError(t, ValidateTag(strings.Repeat("x", MaxTagLength)))
	assert.Error(t, ValidateTag(""))
	assert.Error(t, ValidateTag("two words"))
	assert.Error(t, ValidateTag("tab\there"))
	assert.Error(t, ValidateTag(strings.Repeat("x", MaxTagLength+1)))
}
