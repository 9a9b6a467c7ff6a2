// Package inmem provides a dao.Store that keeps all data in memory. Data does
// not outlive the process.
package inmem

import (
	"github.com/dekarrin/cmdtree/server/dao"
)

type store struct {
	users    *Users
	commands *Commands
}

// NewDatastore returns an empty store. Commands can only be recorded for users
// it holds.
func NewDatastore() dao.Store {
	users := NewUsersRepository()
	return &store{users: users, commands: NewCommandsRepository(users)}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Commands() dao.CommandRepository {
	return s.commands
}

// Close is a no-op; there is nothing to release.
func (s *store) Close() error {
	return nil
}
