// Package command implements command grammars: trees of commands and
// sub-commands with typed parameters, level restrictions and default values,
// along with the dispatcher that routes input lines through them.
//
// Commands are declared with a Builder obtained from a Manager. Construction
// errors, such as two sub-commands that would match the same input, are
// reported when the tree is built instead of surfacing as misrouted input
// later. Once registered, a tree is never modified and may be dispatched on
// from any number of goroutines at once.
package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/internal/strparse"
	"golang.org/x/text/cases"
)

// Manager holds the registered root commands and dispatches input to them.
type Manager struct {
	lookup actor.Lookup
	log    *log.Logger

	mu      sync.RWMutex
	roots   map[string]*node
	aliases map[string]string
}

// NewManager creates a Manager that resolves PLAYER tokens and parameters with
// lookup. If lookup is nil, no player is ever found. If lg is nil, a logger
// for the "command" component is used.
func NewManager(lookup actor.Lookup, lg *log.Logger) *Manager {
	if lookup == nil {
		lookup = actor.NoLookup
	}
	if lg == nil {
		lg = logger.For("command")
	}
	return &Manager{
		lookup:  lookup,
		log:     lg,
		roots:   map[string]*node{},
		aliases: map[string]string{},
	}
}

func (m *Manager) lookupFunc() actor.Lookup {
	return m.lookup
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// Command starts building the root command with the given name. A leading
// "/" is ignored. The command is registered when Build is called on the
// returned Builder.
func (m *Manager) Command(name string) *Builder {
	name = strings.TrimPrefix(name, "/")
	b := &Builder{
		mgr: m,
		reg: &registration{},
		node: &node{
			token:       Lit(name),
			name:        "/" + name,
			restriction: level.Player,
		},
	}

	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		b.fail(serr.New(fmt.Sprintf("%q is not a valid command name", name), ErrInvalidName))
	}
	return b
}

func (m *Manager) register(root *node) error {
	key := foldName(root.token.Text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.roots[key]; ok {
		return serr.New(fmt.Sprintf("%q is ambiguous with %q", root.name, existing.name), ErrAmbiguousCommand)
	}
	if target, ok := m.aliases[key]; ok {
		return serr.New(fmt.Sprintf("%q is already an alias of \"/%s\"", root.name, target), ErrAmbiguousCommand)
	}
	m.roots[key] = root

	m.log.Debug("registered command", "command", root.name)
	return nil
}

// Alias makes alias dispatch to the already-registered command name.
func (m *Manager) Alias(alias, name string) error {
	alias = strings.TrimPrefix(alias, "/")
	name = strings.TrimPrefix(name, "/")
	if alias == "" || strings.IndexFunc(alias, unicode.IsSpace) >= 0 {
		return serr.New(fmt.Sprintf("%q is not a valid alias", alias), ErrInvalidName)
	}

	aliasKey := foldName(alias)
	nameKey := foldName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roots[nameKey]; !ok {
		return serr.New(fmt.Sprintf("command \"/%s\" is not registered", name), serr.ErrNotFound)
	}
	if _, ok := m.roots[aliasKey]; ok {
		return serr.New(fmt.Sprintf("alias \"/%s\" is ambiguous with an existing command", alias), ErrAmbiguousCommand)
	}
	if _, ok := m.aliases[aliasKey]; ok {
		return serr.New(fmt.Sprintf("alias \"/%s\" is already defined", alias), ErrAmbiguousCommand)
	}
	m.aliases[aliasKey] = nameKey
	return nil
}

// Remove unregisters the command with the given name along with every alias
// of it. It returns whether the command was registered.
func (m *Manager) Remove(name string) bool {
	key := foldName(strings.TrimPrefix(name, "/"))

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.roots[key]; !ok {
		return false
	}
	delete(m.roots, key)
	for alias, target := range m.aliases {
		if target == key {
			delete(m.aliases, alias)
		}
	}

	m.log.Debug("removed command", "command", "/"+name)
	return true
}

func (m *Manager) root(name string) *node {
	key := foldName(strings.TrimPrefix(name, "/"))

	m.mu.RLock()
	defer m.mu.RUnlock()

	if target, ok := m.aliases[key]; ok {
		key = target
	}
	return m.roots[key]
}

// Has returns whether a command or alias with the given name is registered.
func (m *Manager) Has(name string) bool {
	return m.root(name) != nil
}

// Names returns the names of the registered commands that an actor at lvl may
// use, sorted and without the leading "/".
func (m *Manager) Names(lvl level.Level) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for _, n := range m.roots {
		if n.restriction <= lvl {
			names = append(names, n.token.Text)
		}
	}
	sort.Strings(names)
	return names
}

// Usage returns the usage of every invocable form of the named command that an
// actor at lvl may use, such as "/pay [amount] [target]". It returns nil if
// there is no such command or the actor cannot use it.
func (m *Manager) Usage(name string, lvl level.Level) []string {
	root := m.root(name)
	if root == nil {
		return nil
	}
	return root.usages(lvl, nil)
}

// Dispatch routes line, typed by a, to the command it names. The leading "/"
// is optional, and the command name and literal sub-command words are matched
// case-insensitively. It returns whether the line was handled as a command;
// false means there is no such command, or that the command had nothing to do
// with this input.
//
// Problems with the input, such as bad parameters or a lack of rights, are
// reported to a with exactly one message and count as handled.
func (m *Manager) Dispatch(a actor.Actor, line string) bool {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "/")

	name := strparse.FirstWord(line)
	if name == "" {
		return false
	}

	root := m.root(name)
	if root == nil {
		return false
	}

	m.log.Debug("dispatching", "actor", a.Name(), "command", root.name, "input", line)
	return m.dispatch(root, a, line[len(name):], nil)
}
