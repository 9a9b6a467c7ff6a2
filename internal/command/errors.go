package command

import "errors"

// Construction errors. Every error returned from Builder.Err is a *serr.Error
// that has one or more of these as its cause.
var (
	ErrInvalidLevel                = errors.New("invalid restriction level")
	ErrInvalidParameterSpec        = errors.New("invalid parameter specification")
	ErrInvalidSubCommand           = errors.New("invalid sub-command")
	ErrAmbiguousCommand            = errors.New("ambiguous command")
	ErrInvalidDefaultValueProvider = errors.New("invalid default value provider")
	ErrInvalidName                 = errors.New("invalid command name")
	ErrAlreadyBuilt                = errors.New("command has already been built")
)
