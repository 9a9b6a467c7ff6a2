// Package strparse contains the lexical matchers used to pull typed tokens off
// the front of a command line.
//
// Every matcher skips leading whitespace and reports the number of bytes it
// consumed including that whitespace, so callers can slice the input with the
// returned length directly.
package strparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Type is the kind of token a Matcher consumes.
type Type int

const (
	// Number matches an optionally negative decimal number and yields a
	// float64.
	Number Type = iota

	// Word matches a run of non-whitespace characters and yields it as a
	// string.
	Word

	// WordMatch matches a word that is one of a fixed set of options,
	// compared case-insensitively, and yields the option as it was declared.
	WordMatch

	// Sentence matches the rest of the text, trimmed, and yields it as a
	// string. It never matches empty text.
	Sentence

	// Custom delegates matching to a caller-supplied CustomFunc.
	Custom
)

func (t Type) String() string {
	switch t {
	case Number:
		return "NUMBER"
	case Word:
		return "WORD"
	case WordMatch:
		return "WORD_FROM_SET"
	case Sentence:
		return "SENTENCE"
	case Custom:
		return "CUSTOM"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Valid returns whether t is one of the defined types.
func (t Type) Valid() bool {
	return t >= Number && t <= Custom
}

// CustomFunc consumes a token from the start of text. It has the same contract
// as Matcher.Match; text is already stripped of leading whitespace.
type CustomFunc func(text string) (n int, value any, ok bool)

var numberRegex = regexp.MustCompile(`^-?\d+(?:\.\d+)?\b`)

// Matcher matches a single token of its Type.
type Matcher struct {
	Type Type

	// Options is the set of accepted words for WordMatch.
	Options []string

	// Func is the matching function for Custom.
	Func CustomFunc
}

// Match attempts to consume a token from the start of text. On success, n is
// the number of bytes consumed (including skipped leading whitespace) and
// value is the typed value of the token.
func (m Matcher) Match(text string) (n int, value any, ok bool) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	skipped := len(text) - len(trimmed)

	switch m.Type {
	case Number:
		loc := numberRegex.FindStringIndex(trimmed)
		if loc == nil {
			return 0, nil, false
		}
		f, err := strconv.ParseFloat(trimmed[:loc[1]], 64)
		if err != nil {
			return 0, nil, false
		}
		return skipped + loc[1], f, true
	case Word:
		w := FirstWord(trimmed)
		if w == "" {
			return 0, nil, false
		}
		return skipped + len(w), w, true
	case WordMatch:
		w := FirstWord(trimmed)
		if w == "" {
			return 0, nil, false
		}
		for _, opt := range m.Options {
			if strings.EqualFold(opt, w) {
				return skipped + len(w), opt, true
			}
		}
		return 0, nil, false
	case Sentence:
		s := strings.TrimRightFunc(trimmed, unicode.IsSpace)
		if s == "" {
			return 0, nil, false
		}
		return len(text), s, true
	case Custom:
		if m.Func == nil || trimmed == "" {
			return 0, nil, false
		}
		cn, v, cok := m.Func(trimmed)
		if !cok {
			return 0, nil, false
		}
		return skipped + cn, v, true
	default:
		return 0, nil, false
	}
}

// Match is a shortcut for matching the types that need no extra
// configuration.
func Match(t Type, text string) (n int, value any, ok bool) {
	return Matcher{Type: t}.Match(text)
}

// FirstWord returns the leading run of non-whitespace characters of s. It
// returns an empty string if s starts with whitespace or is empty.
func FirstWord(s string) string {
	for i, r := range s {
		if unicode.IsSpace(r) {
			return s[:i]
		}
	}
	return s
}
