package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/cmderrors"
	"github.com/dekarrin/cmdtree/internal/message"
	"github.com/dekarrin/cmdtree/internal/strparse"
)

// dispatch routes text, the input remaining after n's own token, through the
// subtree rooted at n. carried holds the arguments collected by the ancestors
// of n.
func (m *Manager) dispatch(n *node, a actor.Actor, text string, carried Args) bool {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)

	if a.Level() < n.restriction {
		m.reject(a, cmderrors.Wrap(
			cmderrors.ErrInsufficientRights,
			message.Format(message.CommandInsufficientRights, n.restriction.Plural()),
			fmt.Sprintf("%s is below level %q required by %s", a.Name(), n.restriction, n.name),
		))
		return true
	}

	for _, c := range n.children {
		if a.Level() < c.restriction {
			continue
		}

		switch c.token.Type {
		case Literal:
			lit := strparse.Matcher{Type: strparse.WordMatch, Options: []string{c.token.Text}}
			if consumed, _, ok := lit.Match(text); ok {
				return m.dispatch(c, a, text[consumed:], carried)
			}
		case Number:
			if consumed, v, ok := strparse.Match(strparse.Number, text); ok {
				return m.dispatch(c, a, text[consumed:], carried.with(v))
			}
		case Word:
			if consumed, v, ok := strparse.Match(strparse.Word, text); ok {
				return m.dispatch(c, a, text[consumed:], carried.with(v))
			}
		case Player:
			if word := strparse.FirstWord(text); word != "" {
				target := m.lookupFunc().Find(word)
				if target == nil {
					m.reject(a, cmderrors.Wrap(
						cmderrors.ErrUnknownPlayer,
						message.Format(message.CommandUnknownPlayer, word),
						fmt.Sprintf("%s: no connected player matches %q", c.name, word),
					))
					return true
				}
				return m.dispatch(c, a, text[len(word):], carried.with(target))
			}
		}

		if c.defValue != nil {
			if v := c.defValue(a); !isNil(v) {
				return m.dispatch(c, a, text, carried.with(v))
			}
		}
	}

	if n.params != nil {
		parsed, ok := parseParameters(n.params, text)
		if !ok {
			m.reject(a, cmderrors.Wrap(
				cmderrors.ErrUsage,
				message.Format(message.CommandUsage, n.usage()),
				fmt.Sprintf("%s: could not parse parameters from %q", n.name, text),
			))
			return true
		}
		carried = carried.with(parsed...)
	}

	if n.handler != nil {
		return n.handler(a, carried)
	}

	// nothing to run; list what the actor could have typed instead, if
	// anything.
	listing := n.listing(a.Level())
	if listing == "" {
		return false
	}
	m.reject(a, cmderrors.Wrap(
		cmderrors.ErrIncomplete,
		message.Format(message.CommandUsage, listing),
		fmt.Sprintf("%s: no sub-command given", n.name),
	))
	return true
}

// reject sends the player message of err to a and logs the technical one.
func (m *Manager) reject(a actor.Actor, err error) {
	m.log.Debug("command rejected", "actor", a.Name(), "error", err)
	a.SendMessage(cmderrors.PlayerMessage(err))
}
