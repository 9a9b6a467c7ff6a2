package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

// Users is a dao.UserRepository kept in a map. Usernames are unique.
type Users struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]dao.User
	idOf map[string]uuid.UUID
}

// NewUsersRepository returns an empty Users.
func NewUsersRepository() *Users {
	return &Users{
		byID: make(map[uuid.UUID]dao.User),
		idOf: make(map[string]uuid.UUID),
	}
}

// Create adds user under a new ID. It has never logged in and counts as having
// logged out at the moment it was created.
func (us *Users) Create(ctx context.Context, user dao.User) (dao.User, error) {
	us.mu.Lock()
	defer us.mu.Unlock()

	if _, taken := us.idOf[user.Username]; taken {
		return dao.User{}, dao.ErrConstraintViolation
	}

	now := time.Now()
	user.ID = uuid.New()
	user.Created, user.Modified, user.LastLogoutTime = now, now, now
	user.LastLoginTime = time.Time{}

	us.put(user)
	return user, nil
}

func (us *Users) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	us.mu.RLock()
	defer us.mu.RUnlock()

	u, ok := us.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}

func (us *Users) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	us.mu.RLock()
	defer us.mu.RUnlock()

	id, ok := us.idOf[username]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return us.byID[id], nil
}

// GetAll lists every user ordered by ID.
func (us *Users) GetAll(ctx context.Context) ([]dao.User, error) {
	us.mu.RLock()
	all := make([]dao.User, 0, len(us.byID))
	for _, u := range us.byID {
		all = append(all, u)
	}
	us.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})
	return all, nil
}

// Update replaces the user with ID id by user, which may carry a new ID or
// username as long as neither belongs to another user.
func (us *Users) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	us.mu.Lock()
	defer us.mu.Unlock()

	old, ok := us.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	if owner, taken := us.idOf[user.Username]; taken && owner != id {
		return dao.User{}, dao.ErrConstraintViolation
	}
	if _, taken := us.byID[user.ID]; taken && user.ID != id {
		return dao.User{}, dao.ErrConstraintViolation
	}

	user.Created = old.Created
	user.Modified = time.Now()

	us.drop(old)
	us.put(user)
	return user, nil
}

func (us *Users) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	us.mu.Lock()
	defer us.mu.Unlock()

	u, ok := us.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	us.drop(u)
	return u, nil
}

func (us *Users) Close() error {
	return nil
}

// put and drop keep both maps in step. us.mu must be held for writing.
func (us *Users) put(u dao.User) {
	us.byID[u.ID] = u
	us.idOf[u.Username] = u.ID
}

func (us *Users) drop(u dao.User) {
	delete(us.byID, u.ID)
	delete(us.idOf, u.Username)
}
