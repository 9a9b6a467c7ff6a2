// Package serr holds the sentinel errors shared by the command system and the
// server, and Error, which carries a message along with the sentinels and
// underlying errors that caused it. errors.Is and errors.As see through an
// Error to every one of its causes.
package serr

import (
	"errors"
	"strings"
)

var (
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrPermissions    = errors.New("you don't have permission to do that")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("resource with same identifying information already exists")
	ErrDB             = errors.New("an error occured with the DB")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal  = errors.New("malformed data in request")
	ErrNotConnected   = errors.New("the user is not connected")
)

// Error is a message with zero or more causes. Its text is the message
// followed by the text of the first cause; the remaining causes are usually
// sentinels that only exist to be matched with errors.Is.
//
// Create one with New or WrapDB.
type Error struct {
	msg    string
	causes []error
}

// New returns an Error with the given message and causes. msg may be empty,
// in which case the first cause supplies the whole text.
func New(msg string, causes ...error) *Error {
	return &Error{msg: msg, causes: append([]error(nil), causes...)}
}

// WrapDB returns an Error caused by err that also matches ErrDB.
func WrapDB(msg string, err error) *Error {
	return New(msg, err, ErrDB)
}

func (e *Error) Error() string {
	var parts []string
	if e.msg != "" {
		parts = append(parts, e.msg)
	}
	if len(e.causes) > 0 {
		parts = append(parts, e.causes[0].Error())
	}
	return strings.Join(parts, ": ")
}

// Message is the message of e without any cause appended.
func (e *Error) Message() string {
	return e.msg
}

// Unwrap gives the causes of e to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return e.causes
}
