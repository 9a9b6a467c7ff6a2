package inmem

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

// Commands is a dao.CommandRepository kept in a map, with the history of each
// user held in the order it was recorded.
type Commands struct {
	mu      sync.RWMutex
	users   dao.UserRepository
	byID    map[uuid.UUID]dao.Command
	history map[uuid.UUID][]uuid.UUID
}

// NewCommandsRepository returns an empty Commands. If users is not nil, only
// commands of users it has can be created.
func NewCommandsRepository(users dao.UserRepository) *Commands {
	return &Commands{
		users:   users,
		byID:    make(map[uuid.UUID]dao.Command),
		history: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (cs *Commands) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	if cs.users != nil {
		if _, err := cs.users.GetByID(ctx, c.UserID); errors.Is(err, dao.ErrNotFound) {
			return dao.Command{}, dao.ErrConstraintViolation
		} else if err != nil {
			return dao.Command{}, err
		}
	}

	c.ID = uuid.New()
	c.Created = time.Now()
	c.Responses = slices.Clone(c.Responses)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.byID[c.ID] = c
	cs.history[c.UserID] = append(cs.history[c.UserID], c.ID)
	return c, nil
}

func (cs *Commands) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	c, ok := cs.byID[id]
	if !ok {
		return dao.Command{}, dao.ErrNotFound
	}
	return c, nil
}

// GetAllByUser lists the history of a user oldest first. A user with no
// history gives an empty, non-nil slice.
func (cs *Commands) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Command, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	ids := cs.history[userID]
	out := make([]dao.Command, len(ids))
	for i, id := range ids {
		out[i] = cs.byID[id]
	}
	return out, nil
}

func (cs *Commands) Delete(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, ok := cs.byID[id]
	if !ok {
		return dao.Command{}, dao.ErrNotFound
	}
	delete(cs.byID, id)

	remaining := slices.DeleteFunc(cs.history[c.UserID], func(other uuid.UUID) bool { return other == id })
	if len(remaining) == 0 {
		delete(cs.history, c.UserID)
	} else {
		cs.history[c.UserID] = remaining
	}
	return c, nil
}

func (cs *Commands) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	ids := cs.history[userID]
	for _, id := range ids {
		delete(cs.byID, id)
	}
	delete(cs.history, userID)
	return len(ids), nil
}

func (cs *Commands) Close() error {
	return nil
}
