package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/server/api"
	"github.com/dekarrin/cmdtree/server/middle"
	"github.com/dekarrin/cmdtree/server/result"
	"github.com/go-chi/chi/v5"
)

// userPath matches the path segment naming a single user.
const userPath = "/{id:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}}"

func newRouter(a api.API) chi.Router {
	r := chi.NewRouter()
	r.Mount(api.PathPrefix, newAPIRouter(a))
	return r
}

func newAPIRouter(a api.API) chi.Router {
	users := a.Backend.DB.Users()
	loggedIn := middle.Authenticate(users, a.Secret, middle.Required, a.UnauthDelay)
	anyone := middle.Authenticate(users, a.Secret, middle.Optional, a.UnauthDelay)
	admins := middle.RequireLevel(level.Administrator, a.UnauthDelay)
	h := a.Handle

	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		api.Respond(w, req, result.NotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(a.UnauthDelay)
		api.Respond(w, req, result.MethodNotAllowed(req))
	})

	r.Route("/login", func(r chi.Router) {
		r.Post("/", h(a.CreateLogin))
		r.With(loggedIn).Delete(userPath, h(a.DeleteLogin))
		r.HandleFunc(userPath+"/", RedirectNoTrailingSlash)
	})

	r.With(loggedIn).Post("/tokens", h(a.RefreshToken))

	r.Route("/users", func(r chi.Router) {
		r.Use(loggedIn)
		r.With(admins).Get("/", h(a.Users))
		r.With(admins).Post("/", h(a.CreateUser))
		r.Get(userPath, h(a.User))
		r.Delete(userPath, h(a.DeleteUser))
		r.HandleFunc(userPath+"/", RedirectNoTrailingSlash)
	})

	r.Route("/commands", func(r chi.Router) {
		r.Use(loggedIn)
		r.Get("/", h(a.History))
		r.Post("/", h(a.Execute))
	})

	r.With(loggedIn).Get("/messages", h(a.Messages))
	r.With(loggedIn).Get("/players", h(a.Players))

	r.With(anyone).Get("/info", h(a.Info))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	api.Respond(w, req, result.Redirection(strings.TrimRight(req.URL.Path, "/")))
}
