// Package actor defines the subject of a dispatched command as seen by the
// command grammar: something with an identity, a privilege level, and a way to
// receive messages.
package actor

import "github.com/dekarrin/cmdtree/internal/level"

// Actor is a connected participant that can invoke commands.
type Actor interface {
	// ID is the numeric identifier of the actor. It is unique among all
	// actors connected at the same time.
	ID() int

	// Name is the display name of the actor.
	Name() string

	// Level is the privilege level the actor currently holds.
	Level() level.Level

	// SendMessage delivers a line of text to the actor.
	SendMessage(msg string)
}

// Lookup finds connected actors. Implementations must be safe to call from
// multiple goroutines at once.
type Lookup interface {
	// Find returns the connected actor whose ID or name is nameOrID, or nil if
	// there is no such actor.
	Find(nameOrID string) Actor
}

// LookupFunc is a function that implements Lookup.
type LookupFunc func(nameOrID string) Actor

// Find calls f(nameOrID).
func (f LookupFunc) Find(nameOrID string) Actor {
	return f(nameOrID)
}

// NoLookup is a Lookup that never finds anybody.
var NoLookup Lookup = LookupFunc(func(string) Actor { return nil })
