// Package input contains readers that get lines of command input from a
// terminal or any other stream.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is the prompt shown by an InteractiveReader unless another is
// set.
const DefaultPrompt = "> "

// Reader reads lines of command input. Close must be called on a Reader once
// it is no longer needed.
type Reader interface {
	// ReadCommand blocks until a line is read and returns it with surrounding
	// whitespace removed. At end of input the error is io.EOF.
	ReadCommand() (string, error)

	// AllowBlank sets whether ReadCommand may return an empty line. By
	// default blank lines are skipped.
	AllowBlank(allow bool)

	Close() error
}

// DirectReader implements Reader and reads lines from any generic input
// stream directly. It can be used generically with any io.Reader but does not
// sanitize the input of control and escape sequences.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements Reader and reads lines from stdin using a go
// implementation of the GNU Readline library. This keeps input clear of all
// typing and editing escape sequences and enables the use of command history.
// This should in general only be used when directly connected to a TTY.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a new DirectReader with a buffered reader on r.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates a new InteractiveReader and initializes
// readline. The returned InteractiveReader must have Close() called on it
// before disposal to properly teardown readline resources.
func NewInteractiveReader() (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          DefaultPrompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: DefaultPrompt,
	}, nil
}

// Close is a no-op for a DirectReader; the underlying stream belongs to the
// caller.
func (dr *DirectReader) Close() error {
	return nil
}

// Close cleans up readline resources and other resources associated with the
// InteractiveReader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadCommand reads the next line from the stream. Unless blank lines are
// allowed, this blocks until a line containing non-space characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dr *DirectReader) ReadCommand() (string, error) {
	return readNonBlank(dr.blanksAllowed, func() (string, error) {
		return dr.r.ReadString('\n')
	})
}

// ReadCommand reads the next line from stdin. Unless blank lines are allowed,
// this blocks until a line containing non-space characters is read. An
// interrupt from the terminal is reported as io.EOF.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (ir *InteractiveReader) ReadCommand() (string, error) {
	return readNonBlank(ir.blanksAllowed, func() (string, error) {
		line, err := ir.rl.Readline()
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return line, err
	})
}

func readNonBlank(blanksAllowed bool, next func() (string, error)) (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = next()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// Prompt gets the current prompt.
func (ir *InteractiveReader) Prompt() string {
	return ir.prompt
}
