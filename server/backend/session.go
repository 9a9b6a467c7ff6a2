package backend

import (
	"sync"
	"time"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/google/uuid"
)

// session ties a logged-in user to the player it is connected as. Commands
// executed in a session run one at a time so that the messages drained after
// each are the ones it caused.
type session struct {
	user   uuid.UUID
	player *players.Player
	opened time.Time

	turn sync.Mutex
}

// live reports whether the player of s is still connected. A player can be
// disconnected without the user logging out, for example by /kick.
func (s *session) live() bool {
	return s.player.Connected()
}

// session returns the session of the given user. A session whose player was
// disconnected is forgotten, but is still returned once along with ok=false so
// that the final messages of its player can be delivered.
func (svc *Service) session(userID uuid.UUID) (s *session, ok bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	s = svc.sessions[userID]
	if s == nil {
		return nil, false
	}
	if !s.live() {
		delete(svc.sessions, userID)
		return s, false
	}
	return s, true
}

// open connects the user with the given name and level as a player unless it
// already has a live session, which is kept as-is.
func (svc *Service) open(userID uuid.UUID, name string, lvl level.Level) (*session, error) {
	if s, ok := svc.session(userID); ok {
		return s, nil
	}

	p, err := svc.Players.Connect(name, lvl)
	if err != nil {
		return nil, err
	}

	s := &session{user: userID, player: p, opened: time.Now()}
	svc.mu.Lock()
	svc.sessions[userID] = s
	svc.mu.Unlock()

	svc.log.Info("player connected", "user", name, "player", p.ID(), "level", p.Level())
	return s, nil
}

// close forgets the session of the given user and disconnects its player.
func (svc *Service) close(userID uuid.UUID) {
	svc.mu.Lock()
	s := svc.sessions[userID]
	delete(svc.sessions, userID)
	svc.mu.Unlock()

	if s == nil {
		return
	}
	if s.live() {
		svc.Players.Disconnect(s.player.ID())
	}
	svc.log.Info("player disconnected", "player", s.player.Name(), "connected_for", time.Since(s.opened).Round(time.Second))
}

// owner returns the user whose session is connected as p.
func (svc *Service) owner(p *players.Player) (uuid.UUID, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for id, s := range svc.sessions {
		if s.player == p {
			return id, true
		}
	}
	return uuid.Nil, false
}
