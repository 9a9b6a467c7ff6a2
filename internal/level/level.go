// Package level defines the privilege levels that actors hold and that
// commands can be restricted to.
package level

import (
	"fmt"
	"strings"
)

// Level is the privilege level of an actor. Levels are ordered; a higher
// Level has every right that a lower one has.
type Level int

const (
	Player Level = iota
	Administrator
	Management
)

// Valid returns whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Player && l <= Management
}

func (l Level) String() string {
	switch l {
	case Player:
		return "player"
	case Administrator:
		return "administrator"
	case Management:
		return "Management member"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Plural gives the name of the group of actors at level l, suitable for use
// in a sentence like "only available to administrators".
func (l Level) Plural() string {
	switch l {
	case Player:
		return "players"
	case Administrator:
		return "administrators"
	case Management:
		return "Management members"
	default:
		return fmt.Sprintf("Level(%d)s", int(l))
	}
}

// Parse parses a Level from its name. Matching is case-insensitive and the
// short forms "admin" and "management" are accepted.
func Parse(s string) (Level, error) {
	check := strings.ToLower(strings.TrimSpace(s))
	switch check {
	case "player":
		return Player, nil
	case "administrator", "admin":
		return Administrator, nil
	case "management", "management member":
		return Management, nil
	default:
		return Player, fmt.Errorf("must be one of 'player', 'administrator', or 'management'")
	}
}

// Names returns the parseable names of all levels in ascending order.
func Names() []string {
	return []string{"player", "administrator", "management"}
}
