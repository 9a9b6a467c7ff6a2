package command

import (
	"fmt"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/serr"
)

// registration is shared by every Builder of one command tree. It holds the
// first construction error, which stops any further changes to the tree, and
// whether the root has been built. A built root seals the whole tree.
type registration struct {
	err    error
	sealed bool
}

// Builder constructs a command and its sub-commands. Obtain one for a root
// command from Manager.Command and chain calls on it:
//
//	err := mgr.Command("world").
//		Sub(command.Lit("add")).
//			Parameters([]command.Parameter{{Name: "id", Type: command.Number}}).
//			Build(addWorld).
//		Sub(command.Lit("list")).Build(listWorlds).
//		Build(nil).
//		Err()
//
// Errors do not interrupt the chain; the first one is kept and returned by
// Err, and a tree with an error is never registered.
type Builder struct {
	mgr    *Manager
	parent *Builder
	node   *node
	reg    *registration
	built  bool
}

func (b *Builder) fail(err error) {
	if b.reg.err == nil {
		b.reg.err = err
	}
}

func (b *Builder) usable() bool {
	if b.reg.err != nil {
		return false
	}
	if b.built {
		b.fail(serr.New(fmt.Sprintf("%q cannot be changed once built", b.node.name), ErrAlreadyBuilt))
		return false
	}
	if b.reg.sealed {
		b.fail(serr.New(fmt.Sprintf("%q cannot be added to once its root command is built", b.node.name), ErrAlreadyBuilt))
		return false
	}
	return true
}

// Name returns the path-qualified name of the command being built.
func (b *Builder) Name() string {
	return b.node.name
}

// Restrict sets the minimum level an actor needs to use the command.
func (b *Builder) Restrict(lvl level.Level) *Builder {
	if !b.usable() {
		return b
	}
	if !lvl.Valid() {
		b.fail(serr.New(fmt.Sprintf("%q: invalid player level %d", b.node.name, int(lvl)), ErrInvalidLevel))
		return b
	}
	b.node.restriction = lvl
	return b
}

// Parameters sets the trailing parameters of the command, parsed from the
// input left once no sub-command matches.
func (b *Builder) Parameters(params []Parameter) *Builder {
	if !b.usable() {
		return b
	}
	if params == nil {
		b.fail(serr.New(fmt.Sprintf("%q: parameter list is nil", b.node.name), ErrInvalidParameterSpec))
		return b
	}

	compiled, err := compileParameters(b.node.name, params, b.mgr.lookupFunc)
	if err != nil {
		b.fail(err)
		return b
	}
	b.node.params = compiled
	return b
}

// Sub starts building a sub-command matched by tok. tok must be a literal or
// one of NumberToken, WordToken and PlayerToken.
func (b *Builder) Sub(tok Token) *Builder {
	return b.SubWithDefault(tok, nil)
}

// SubWithDefault is Sub for a non-literal token whose argument falls back to
// the value of def when the input does not supply one.
func (b *Builder) SubWithDefault(tok Token, def DefaultFunc) *Builder {
	child := &Builder{
		mgr:    b.mgr,
		parent: b,
		reg:    b.reg,
		node: &node{
			token:       tok,
			name:        b.node.childName(tok),
			restriction: level.Player,
			defValue:    def,
		},
	}

	if !b.usable() {
		return child
	}
	if !tok.validSubCommand() {
		child.fail(serr.New(fmt.Sprintf("%q: only literals and NUMBER, WORD and PLAYER are allowed as sub-commands, not %s", child.node.name, tok), ErrInvalidSubCommand))
		return child
	}
	if def != nil && tok.Type == Literal {
		child.fail(serr.New(fmt.Sprintf("%q: default values only make sense for NUMBER, WORD and PLAYER sub-commands", child.node.name), ErrInvalidDefaultValueProvider, ErrInvalidSubCommand))
		return child
	}
	return child
}

// Build finishes the command and sets the handler invoked when input is
// dispatched to it. handler may be nil for commands that only route to their
// sub-commands.
//
// For a sub-command, Build checks that it is unambiguous with its siblings,
// adds it to its parent and returns the parent. For a root command, Build
// registers the tree with the Manager and returns b.
func (b *Builder) Build(handler Handler) *Builder {
	ret := b.parent
	if ret == nil {
		ret = b
	}

	if !b.usable() {
		return ret
	}
	b.node.handler = handler
	b.built = true

	if b.parent == nil {
		b.reg.sealed = true
		if err := b.mgr.register(b.node); err != nil {
			b.fail(err)
		}
		return ret
	}

	if err := attach(b.parent.node, b.node); err != nil {
		b.fail(err)
		return ret
	}

	if b.node.restriction < b.parent.node.restriction {
		b.mgr.log.Warn("sub-command is restricted below its parent and is only reachable at the parent's level",
			"command", b.node.name,
			"level", b.node.restriction,
			"parent_level", b.parent.node.restriction,
		)
	}
	return ret
}

// Err returns the first error encountered while building the tree b belongs
// to.
func (b *Builder) Err() error {
	return b.reg.err
}
