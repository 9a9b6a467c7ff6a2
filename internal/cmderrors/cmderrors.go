// Package cmderrors holds errors produced while dispatching a command line.
// Each carries a message meant for the player who typed the line as well as a
// technical message suitable for logs.
package cmderrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientRights is the cause of dispatch errors raised when an
	// actor is below the restriction level of the command it typed.
	ErrInsufficientRights = errors.New("insufficient rights")

	// ErrUnknownPlayer is the cause of dispatch errors raised when a player
	// token could not be resolved to a connected player.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrUsage is the cause of dispatch errors raised when the parameters
	// given to a command could not be parsed.
	ErrUsage = errors.New("bad usage")

	// ErrIncomplete is the cause of dispatch errors raised when a routing-only
	// command was typed without any of its sub-commands.
	ErrIncomplete = errors.New("incomplete command")
)

// dispatchError is an error caused by attempting to dispatch input. Either
// the input could not be understood or it specifies doing something that is
// not allowed for the actor that typed it.
type dispatchError struct {
	msg    string
	player string
	wrap   error
}

func (e *dispatchError) Error() string {
	return e.msg
}

// PlayerMessage is the message that should be sent to the actor to describe
// the error.
func (e *dispatchError) PlayerMessage() string {
	return e.player
}

// Unwrap gives the error that the dispatchError wraps, if it wraps one.
func (e *dispatchError) Unwrap() error {
	return e.wrap
}

// New returns a new dispatch error that has both the message to show the
// player and the technical description of the error.
func New(player, technical string) error {
	return Wrap(nil, player, technical)
}

// Newf returns a new dispatch error with an automatically generated technical
// description.
func Newf(playerFormat string, a ...interface{}) error {
	return New(fmt.Sprintf(playerFormat, a...), "")
}

// Wrap returns a new dispatch error that has both the message to show the
// player and the technical description of the error, and that wraps the given
// error.
func Wrap(e error, player, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got DispatchError(%q)", player)
	}
	return &dispatchError{
		msg:    technical,
		player: player,
		wrap:   e,
	}
}

// Wrapf returns a new dispatch error that wraps the given error and has an
// automatically generated technical description. The arguments given are the
// error to wrap, then the format followed by its arguments.
func Wrapf(e error, playerFormat string, a ...interface{}) error {
	return Wrap(e, fmt.Sprintf(playerFormat, a...), "")
}

// PlayerMessage gets the message to send to a player for the given error. If
// err is or wraps an error created by this package, its player message is
// returned. Otherwise, err.Error() is returned.
func PlayerMessage(err error) string {
	var dErr *dispatchError
	if errors.As(err, &dErr) {
		return dErr.PlayerMessage()
	}
	return err.Error()
}
