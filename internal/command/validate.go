package command

import (
	"fmt"

	"github.com/dekarrin/cmdtree/internal/serr"
)

// ensureUnambiguous checks that newNode can be told apart from everything
// already reachable from parent. Existing children with a default value are
// searched recursively, since their own children are reachable from parent
// without consuming any input.
func ensureUnambiguous(parent, newNode *node) error {
	if parent.hasWildcardChild {
		msg := fmt.Sprintf("%q must be defined before the WORD parameter command", newNode.name)
		return serr.New(msg, ErrAmbiguousCommand)
	}

	for _, existing := range parent.children {
		if existing.defValue != nil {
			if err := ensureUnambiguous(existing, newNode); err != nil {
				return err
			}
		}

		if existing.token.Equal(newNode.token) {
			msg := fmt.Sprintf("%q is ambiguous with %q", newNode.name, existing.name)
			return serr.New(msg, ErrAmbiguousCommand)
		}
	}

	return nil
}

// attach validates newNode against parent and, if it is unambiguous, appends
// it to parent's children. When newNode has a default value, each of its
// default-reachable descendants must also be unambiguous with parent.
func attach(parent, newNode *node) error {
	if err := ensureUnambiguous(parent, newNode); err != nil {
		return err
	}

	if newNode.defValue != nil {
		for _, desc := range newNode.defaultReachable() {
			if err := ensureUnambiguous(parent, desc); err != nil {
				return err
			}
		}
	}

	if newNode.token.Type == Word {
		parent.hasWildcardChild = true
	}
	parent.children = append(parent.children, newNode)
	return nil
}
