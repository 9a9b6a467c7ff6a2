// Package players keeps track of the players that are connected at any given
// moment and delivers messages to them.
package players

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/rosed"
	"golang.org/x/text/cases"
)

// DefaultMessageWidth is the column at which messages sent to a player are
// wrapped when no other width is configured.
const DefaultMessageWidth = 144

// Player is a connected player. It is safe for concurrent use.
type Player struct {
	id    int
	name  string
	width int

	mu        sync.Mutex
	lvl       level.Level
	outbox    []string
	connected bool
}

// ID returns the ID assigned to the player when it connected.
func (p *Player) ID() int {
	return p.id
}

// Name returns the player's name.
func (p *Player) Name() string {
	return p.name
}

// Level returns the player's current level.
func (p *Player) Level() level.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lvl
}

// SetLevel changes the player's level.
func (p *Player) SetLevel(lvl level.Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lvl = lvl
}

// Connected returns whether the player is still connected.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// SendMessage queues msg for delivery to the player. Lines longer than the
// player's message width are wrapped; existing line breaks are kept.
func (p *Player) SendMessage(msg string) {
	if p.width > 0 {
		lines := strings.Split(msg, "\n")
		for i := range lines {
			if len(lines[i]) > p.width {
				lines[i] = rosed.Edit(lines[i]).Wrap(p.width).String()
			}
		}
		msg = strings.Join(lines, "\n")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.outbox = append(p.outbox, msg)
}

// Pending returns the number of messages waiting to be drained.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.outbox)
}

// Drain returns all messages sent to the player since the last call to Drain
// and clears them.
func (p *Player) Drain() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := p.outbox
	p.outbox = nil
	return msgs
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%d)", p.name, p.id)
}

// Manager is the registry of connected players. It is safe for concurrent use,
// and Find in particular may be called from any number of dispatching
// goroutines at once.
type Manager struct {
	// MessageWidth is the width that messages are wrapped to for players that
	// connect after it is set. Zero disables wrapping.
	MessageWidth int

	mu     sync.RWMutex
	byID   map[int]*Player
	byName map[string]*Player
}

// NewManager creates an empty Manager that wraps messages at
// DefaultMessageWidth.
func NewManager() *Manager {
	return &Manager{
		MessageWidth: DefaultMessageWidth,
		byID:         map[int]*Player{},
		byName:       map[string]*Player{},
	}
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// ValidateName returns an error matching serr.ErrBadArgument if name cannot
// be used as a player name. Names are single words and never purely numeric,
// so that a name can never be mistaken for an ID.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return serr.New(fmt.Sprintf("invalid player name %q", name), serr.ErrBadArgument)
	}
	if _, err := strconv.Atoi(name); err == nil {
		return serr.New(fmt.Sprintf("player name %q cannot be a number", name), serr.ErrBadArgument)
	}
	return nil
}

// Connect adds a new player with the given name and level and assigns it the
// lowest ID not currently in use. The name must be a single word that is not
// purely numeric, and must not be in use by another connected player
// regardless of case.
func (m *Manager) Connect(name string, lvl level.Level) (*Player, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !lvl.Valid() {
		return nil, serr.New(fmt.Sprintf("invalid level %d", int(lvl)), serr.ErrBadArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	folded := foldName(name)
	if _, ok := m.byName[folded]; ok {
		return nil, serr.New(fmt.Sprintf("a player named %q is already connected", name), serr.ErrAlreadyExists)
	}

	id := 0
	for {
		if _, ok := m.byID[id]; !ok {
			break
		}
		id++
	}

	p := &Player{
		id:        id,
		name:      name,
		width:     m.MessageWidth,
		lvl:       lvl,
		connected: true,
	}
	m.byID[id] = p
	m.byName[folded] = p
	return p, nil
}

// Disconnect removes the player with the given ID. It returns the removed
// player, or nil if no player with that ID was connected.
func (m *Manager) Disconnect(id int) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return nil
	}
	delete(m.byID, id)
	delete(m.byName, foldName(p.name))

	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	return p
}

// Get returns the player with the given ID, or nil if there is none.
func (m *Manager) Get(id int) *Player {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

// FindPlayer looks a player up first by exact numeric ID, then by name
// compared case-insensitively. It returns nil if neither matches.
func (m *Manager) FindPlayer(nameOrID string) *Player {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id, err := strconv.Atoi(nameOrID); err == nil {
		if p, ok := m.byID[id]; ok {
			return p
		}
	}
	return m.byName[foldName(nameOrID)]
}

// Find is FindPlayer returning an actor.Actor, for use as an actor.Lookup.
func (m *Manager) Find(nameOrID string) actor.Actor {
	p := m.FindPlayer(nameOrID)
	if p == nil {
		return nil
	}
	return p
}

// All returns every connected player ordered by ID.
func (m *Manager) All() []*Player {
	m.mu.RLock()
	all := make([]*Player, 0, len(m.byID))
	for _, p := range m.byID {
		all = append(all, p)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].id < all[j].id
	})
	return all
}

// Count returns the number of connected players.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Broadcast sends msg to every connected player at or above the given level.
func (m *Manager) Broadcast(minLevel level.Level, msg string) {
	for _, p := range m.All() {
		if p.Level() >= minLevel {
			p.SendMessage(msg)
		}
	}
}
