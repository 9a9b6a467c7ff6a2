package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/internal/strparse"
)

// Parameter describes one trailing parameter of a command.
type Parameter struct {
	// Name is shown in usage messages as "[Name]".
	Name string

	// Type is the kind of value the parameter takes. Literal is not allowed.
	Type Type

	// Optional parameters produce a nil argument when no input is left for
	// them.
	Optional bool

	// Options are the words accepted by a WordFromSet parameter.
	Options []string

	// Parser consumes a Custom parameter.
	Parser strparse.CustomFunc
}

// compiledParam is a Parameter along with the matcher that parses it.
type compiledParam struct {
	Parameter
	matcher strparse.Matcher
}

// compileParameters validates params and builds their matchers. Player
// parameters become Custom matchers that look the player up with lookup.
func compileParameters(cmdName string, params []Parameter, lookup func() actor.Lookup) ([]compiledParam, error) {
	compiled := make([]compiledParam, 0, len(params))

	for i, p := range params {
		if p.Name == "" {
			return nil, serr.New(fmt.Sprintf("%q: parameter %d has no name", cmdName, i), ErrInvalidParameterSpec)
		}

		mt, ok := p.Type.matcherType()
		if !ok {
			return nil, serr.New(fmt.Sprintf("%q: parameter %q has invalid type %s", cmdName, p.Name, p.Type), ErrInvalidParameterSpec)
		}

		m := strparse.Matcher{Type: mt}
		switch p.Type {
		case WordFromSet:
			if len(p.Options) < 1 {
				return nil, serr.New(fmt.Sprintf("%q: parameter %q needs at least one option", cmdName, p.Name), ErrInvalidParameterSpec)
			}
			m.Options = append([]string(nil), p.Options...)
		case Custom:
			if p.Parser == nil {
				return nil, serr.New(fmt.Sprintf("%q: custom parameter %q has no parser", cmdName, p.Name), ErrInvalidParameterSpec)
			}
			m.Func = p.Parser
		case Player:
			m.Func = playerParser(lookup)
		}

		compiled = append(compiled, compiledParam{Parameter: p, matcher: m})
	}

	return compiled, nil
}

// playerParser consumes the first word of the text if it names a connected
// player.
func playerParser(lookup func() actor.Lookup) strparse.CustomFunc {
	return func(text string) (int, any, bool) {
		w := strparse.FirstWord(text)
		if w == "" {
			return 0, nil, false
		}
		found := lookup().Find(w)
		if found == nil {
			return 0, nil, false
		}
		return len(w), found, true
	}
}

// parseParameters parses text against params in a single pass. A required
// parameter with no input left for it, or any parameter whose input does not
// match its type, fails the whole parse. Input left after the last parameter
// is ignored.
func parseParameters(params []compiledParam, text string) (Args, bool) {
	args := make(Args, 0, len(params))

	for _, p := range params {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		if text == "" {
			if !p.Optional {
				return nil, false
			}
			args = append(args, nil)
			continue
		}

		n, v, ok := p.matcher.Match(text)
		if !ok {
			return nil, false
		}
		args = append(args, v)
		text = text[n:]
	}

	return args, true
}

// Args are the arguments collected while dispatching a command, in the order
// their tokens appeared: values from sub-command tokens first, then trailing
// parameters. A missing optional parameter is nil.
type Args []any

// Has returns whether argument i exists and is not nil.
func (a Args) Has(i int) bool {
	return i >= 0 && i < len(a) && a[i] != nil
}

// Number returns argument i as a number. It returns 0 if the argument is not
// a number.
func (a Args) Number(i int) float64 {
	if !a.Has(i) {
		return 0
	}
	f, _ := a[i].(float64)
	return f
}

// String returns argument i as a string. It returns "" if the argument is not
// a string.
func (a Args) String(i int) string {
	if !a.Has(i) {
		return ""
	}
	s, _ := a[i].(string)
	return s
}

// Actor returns argument i as an actor. It returns nil if the argument is not
// an actor.
func (a Args) Actor(i int) actor.Actor {
	if !a.Has(i) {
		return nil
	}
	act, _ := a[i].(actor.Actor)
	return act
}

// with returns a copy of a with vals appended. The original is never
// modified, so siblings tried later see the arguments as they were.
func (a Args) with(vals ...any) Args {
	out := make(Args, len(a), len(a)+len(vals))
	copy(out, a)
	return append(out, vals...)
}
