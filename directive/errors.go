package directive

import (
	"fmt"
	"go/token"
)

// ErrorKind classifies directive errors.
type ErrorKind uint8

const (
	UnknownKey ErrorKind = iota + 1
	Malformed
	Redundant
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownKey:
		return "unknown key"
	case Malformed:
		return "malformed"
	case Redundant:
		return "redundant"
	}
	return "unknown"
}

// Error reports a problem with one directive entry. Positions are
// absolute file positions when the directive was parsed with a base
// position.
type Error struct {
	Kind ErrorKind
	Key  string
	Msg  string

	// Pos and End delimit the offending token.
	Pos token.Pos
	End token.Pos

	// Prev is the first occurrence of Key for Redundant errors.
	Prev token.Pos
}

func (e *Error) Error() string {
	if e.Key != "" && e.Kind != Redundant {
		return fmt.Sprintf("getter directive %s: %s", e.Key, e.Msg)
	}
	return fmt.Sprintf("getter directive: %s", e.Msg)
}
