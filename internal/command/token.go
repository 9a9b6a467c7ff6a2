package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/cmdtree/internal/strparse"
)

// Type is the kind of a sub-command token or of a parameter.
type Type int

const (
	// Literal matches a fixed word. It is only valid as a sub-command token.
	Literal Type = iota

	// Number matches a number and produces a float64 argument.
	Number

	// Word matches any single word and produces a string argument. As a
	// sub-command token it is a catch-all and must be the last sibling added.
	Word

	// WordFromSet matches one word out of Parameter.Options and produces the
	// matching option. It is only valid as a parameter.
	WordFromSet

	// Sentence matches the rest of the line and produces a string argument.
	// It is only valid as a parameter.
	Sentence

	// Custom matches using Parameter.Parser. It is only valid as a parameter.
	Custom

	// Player matches the ID or name of a connected player and produces the
	// player as an actor.Actor argument.
	Player
)

func (t Type) String() string {
	switch t {
	case Literal:
		return "LITERAL"
	case Number:
		return "NUMBER"
	case Word:
		return "WORD"
	case WordFromSet:
		return "WORD_FROM_SET"
	case Sentence:
		return "SENTENCE"
	case Custom:
		return "CUSTOM"
	case Player:
		return "PLAYER"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Token identifies a sub-command. Two tokens are equal when they are both
// literals with the same text, or are both the same non-literal type.
type Token struct {
	Type Type

	// Text is the word matched by a Literal token. It is empty for every
	// other type.
	Text string
}

// Tokens for the non-literal sub-command types.
var (
	NumberToken = Token{Type: Number}
	WordToken   = Token{Type: Word}
	PlayerToken = Token{Type: Player}
)

// Lit returns a literal token for word.
func Lit(word string) Token {
	return Token{Type: Literal, Text: word}
}

// Equal returns whether t and o would match the same input. Literals match
// without regard to case.
func (t Token) Equal(o Token) bool {
	if t.Type != o.Type {
		return false
	}
	return t.Type != Literal || strings.EqualFold(t.Text, o.Text)
}

// display is how the token appears in usage messages.
func (t Token) display() string {
	if t.Type == Literal {
		return t.Text
	}
	return strings.ToLower(t.Type.String())
}

func (t Token) String() string {
	if t.Type == Literal {
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Type.String()
}

func (t Token) validSubCommand() bool {
	switch t.Type {
	case Literal:
		return t.Text != "" && strings.IndexFunc(t.Text, unicode.IsSpace) < 0
	case Number, Word, Player:
		return true
	default:
		return false
	}
}

// matcherType gives the strparse type used to match parameters of type t.
func (t Type) matcherType() (strparse.Type, bool) {
	switch t {
	case Number:
		return strparse.Number, true
	case Word:
		return strparse.Word, true
	case WordFromSet:
		return strparse.WordMatch, true
	case Sentence:
		return strparse.Sentence, true
	case Custom, Player:
		return strparse.Custom, true
	default:
		return 0, false
	}
}
