// Package backend has services for interacting with the cmdtree server
// decoupled from the API that accesses it.
package backend

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/command"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost is the bcrypt cost used for new passwords when none is
// configured.
const DefaultPasswordCost = 14

// Service is a service for interacting with and modifying the cmdtree server
// backend. It performs the actions requested and makes calls to server
// persistence to preserve the backend state.
//
// Each logged-in user is connected to Players as a player with the user's
// name and level for as long as the login lasts, and commands it executes are
// dispatched through Commands as that player.
//
// The zero-value of Service is not ready to be used; call New.
type Service struct {

	// DB is the persistence store of the service.
	DB dao.Store

	// Commands is the grammar that executed lines are dispatched to.
	Commands *command.Manager

	// Players is the registry that logged-in users are connected to.
	Players *players.Manager

	// PasswordCost is the bcrypt cost of newly-set passwords.
	PasswordCost int

	log *log.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// New creates a Service ready for use. Commands should have been created with
// pm as its actor lookup.
func New(db dao.Store, cmds *command.Manager, pm *players.Manager) *Service {
	return &Service{
		DB:           db,
		Commands:     cmds,
		Players:      pm,
		PasswordCost: DefaultPasswordCost,
		log:          logger.For("backend"),
		sessions:     map[uuid.UUID]*session{},
	}
}

func (svc *Service) passwordCost() int {
	if svc.PasswordCost < bcrypt.MinCost {
		return DefaultPasswordCost
	}
	return svc.PasswordCost
}
