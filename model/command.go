package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Role is the part a connection plays in a room once negotiated.
type Role string

const (
	// RolePublisher feeds messages into a room.
	RolePublisher Role = "pub"

	// RoleSubscriber receives every message broadcast in a room.
	RoleSubscriber Role = "sub"

	// RoleQuit ends a connection that is still negotiating.
	RoleQuit Role = "quit"
)

// MaxTagLength bounds the length of a room tag.
const MaxTagLength = 255

// ErrEmptyCommand is returned by ParseCommand for blank lines.
var ErrEmptyCommand = errors.New("empty command")

// Command is one parsed negotiation line, e.g. "pub room1".
type Command struct {
	Role Role
	Tag  string
}

// Validate checks the command against the negotiation grammar.
func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Role, validation.Required, validation.In(RolePublisher, RoleSubscriber, RoleQuit)),
		validation.Field(&c.Tag,
			validation.When(c.Role != RoleQuit, validation.Required, validation.Length(1, MaxTagLength)),
			validation.When(c.Role == RoleQuit, validation.Empty),
		),
	)
}

// ParseCommand parses a negotiation line: a role keyword and a whitespace-free
// tag separated by whitespace. Trailing CR/LF is ignored. "quit" takes no tag.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	cmd := Command{Role: Role(fields[0])}
	switch len(fields) {
	case 1:
	case 2:
		cmd.Tag = fields[1]
	default:
		return Command{}, errors.New("too many tokens")
	}

	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// ValidateTag checks that tag can name a room.
func ValidateTag(tag string) error {
	return validation.Validate(tag,
		validation.Required,
		validation.Length(1, MaxTagLength),
		validation.By(func(value interface{}) error {
			if strings.ContainsAny(value.(string), " \t\r\n") {
				return errors.New("must not contain whitespace")
			}
			return nil
		}),
	)
}
