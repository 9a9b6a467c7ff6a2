// Package server provides an HTTP REST server that lets remote users log in as
// players and execute commands against a command grammar. The API is mounted
// under /api/v1:
//
//	POST   /login          - accepts user and password and returns a JWT.
//	DELETE /login/{id}     - ends the login of a user and disconnects its player.
//	POST   /tokens         - refreshes the token without requiring credentials.
//	POST   /commands       - executes a line of input as the user's player.
//	GET    /commands       - gets the command history of the user.
//	GET    /messages       - drains messages the user's player has received.
//	GET    /players        - lists the connected players.
//	POST   /users          - creates a new user account.
//	GET    /users          - gets all users.
//	GET    /users/{id}     - gets info on a user.
//	DELETE /users/{id}     - deletes a user and its history.
//	GET    /info           - gets version info on the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/command"
	"github.com/dekarrin/cmdtree/internal/features/core"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/server/api"
	"github.com/dekarrin/cmdtree/server/backend"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/go-chi/chi/v5"
)

// Server is an HTTP REST server that gives remote users access to a command
// grammar. The zero-value of a Server should not be used directly; call New
// to get one ready for use.
type Server struct {
	cfg     Config
	db      dao.Store
	core    *core.Feature
	backend *backend.Service
	router  chi.Router
	http    *http.Server
	log     *log.Logger
}

// New creates a new Server from the given config. Unset values in cfg are
// given their defaults before it is validated.
func New(cfg Config) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect DB: %w", err)
	}

	pm := players.NewManager()
	pm.MessageWidth = cfg.MessageWidth
	if pm.MessageWidth < 0 {
		pm.MessageWidth = 0
	}

	cmds := command.NewManager(pm, logger.For("command"))
	feat, err := core.New(cmds, pm)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register commands: %w", err)
	}

	svc := backend.New(db, cmds, pm)

	srv := &Server{
		cfg:     cfg,
		db:      db,
		core:    feat,
		backend: svc,
		log:     logger.For("server"),
	}

	feat.OnLevelChange = srv.persistLevel

	srv.router = newRouter(api.API{
		Backend:     svc,
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
	})

	return srv, nil
}

func (srv *Server) persistLevel(p *players.Player, old level.Level) {
	if err := srv.backend.UpdateLevel(context.Background(), p); err != nil {
		srv.log.Error("could not save level change", "player", p.Name(), "from", old, "to", p.Level(), "err", err)
		return
	}
	srv.log.Info("level changed", "player", p.Name(), "from", old, "to", p.Level())
}

// Backend returns the service that the server's API calls into.
func (srv *Server) Backend() *backend.Service {
	return srv.backend
}

// Handler returns the root HTTP handler of the server.
func (srv *Server) Handler() http.Handler {
	return srv.router
}

// Config returns the configuration the server was created with, with defaults
// filled in.
func (srv *Server) Config() Config {
	return srv.cfg
}

// ServeForever begins listening on the configured address for HTTP REST client
// requests. It returns only once the server stops; after a call to Shutdown the
// returned error is nil.
func (srv *Server) ServeForever() error {
	srv.http = &http.Server{
		Addr:    srv.cfg.Listen,
		Handler: srv.router,
	}

	srv.log.Info("listening", "address", srv.cfg.Listen, "db", srv.cfg.DB.String())
	err := srv.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops a server started with ServeForever, waiting at
// most timeout for active requests to finish.
func (srv *Server) Shutdown(timeout time.Duration) error {
	if srv.http == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.http.Shutdown(ctx)
}

// Close releases the commands and the persistence store of the server.
func (srv *Server) Close() error {
	srv.core.Dispose()
	return srv.db.Close()
}
