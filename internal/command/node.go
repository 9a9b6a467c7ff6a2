package command

import (
	"reflect"
	"strings"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
)

// Handler is called when input is dispatched to a command. It returns whether
// the input was handled; returning false lets the caller treat the line as
// something other than a command.
type Handler func(a actor.Actor, args Args) bool

// DefaultFunc supplies the argument for a non-literal sub-command when the
// input does not contain one. It must depend only on the actor. Returning nil
// means there is no default and the sub-command is not entered.
type DefaultFunc func(a actor.Actor) any

// node is a single command or sub-command in a grammar tree. Nodes are only
// modified by their Builder and never after their tree has been registered.
type node struct {
	token Token

	// name is the path-qualified name, such as "/world add".
	name string

	restriction level.Level
	children    []*node

	// params is nil when no trailing parameters were configured.
	params []compiledParam

	handler  Handler
	defValue DefaultFunc

	hasWildcardChild bool
}

// usage renders the command's path followed by each parameter in brackets,
// for example "/pay [amount] [target]".
func (n *node) usage() string {
	var sb strings.Builder
	sb.WriteString(n.name)
	for _, p := range n.params {
		sb.WriteString(" [")
		sb.WriteString(p.Name)
		sb.WriteString("]")
	}
	return sb.String()
}

// visibleChildren returns the children that an actor at lvl may use.
func (n *node) visibleChildren(lvl level.Level) []*node {
	var visible []*node
	for _, c := range n.children {
		if c.restriction <= lvl {
			visible = append(visible, c)
		}
	}
	return visible
}

// listing renders the node's name followed by the tokens of its children
// visible at lvl, for example "/world [add/list]". It returns "" if no child is
// visible.
func (n *node) listing(lvl level.Level) string {
	visible := n.visibleChildren(lvl)
	if len(visible) < 1 {
		return ""
	}

	tokens := make([]string, len(visible))
	for i := range visible {
		tokens[i] = visible[i].token.display()
	}
	return n.name + " [" + strings.Join(tokens, "/") + "]"
}

// usages appends to lines the usage of every command in the subtree rooted at
// n that an actor at lvl can invoke.
func (n *node) usages(lvl level.Level, lines []string) []string {
	if n.restriction > lvl {
		return lines
	}
	if n.handler != nil || n.params != nil {
		lines = append(lines, n.usage())
	}
	for _, c := range n.children {
		lines = c.usages(lvl, lines)
	}
	return lines
}

// defaultReachable returns the descendants of n that input can reach without
// consuming a token for n itself: its children, plus the defaultReachable
// descendants of each child that has a default value.
func (n *node) defaultReachable() []*node {
	var reach []*node
	for _, c := range n.children {
		reach = append(reach, c)
		if c.defValue != nil {
			reach = append(reach, c.defaultReachable()...)
		}
	}
	return reach
}

// childName gives the path-qualified name of a sub-command of n with token t.
func (n *node) childName(t Token) string {
	if t.Type == Literal {
		return n.name + " " + t.Text
	}
	return n.name + " [" + t.display() + "]"
}

// isNil reports whether v is nil or an interface holding a nil pointer, map,
// slice, func or chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
