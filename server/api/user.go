package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/middle"
	"github.com/dekarrin/cmdtree/server/result"
)

// Users lists every account. Routes guard it with an administrator check.
func (api API) Users(req *http.Request) result.Result {
	users, err := api.Backend.GetAllUsers(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]UserModel, len(users))
	for i := range users {
		resp[i] = userModel(users[i])
	}
	return result.OK(resp, "%s got %d user(s)", middle.CallerOf(req), len(resp))
}

// CreateUser adds an account. New accounts are players unless a level is
// given; only Management may hand out anything higher.
func (api API) CreateUser(req *http.Request) result.Result {
	caller := middle.CallerOf(req)

	var m UserModel
	if err := decodeBody(req, &m); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if r, ok := requireFields("username", m.Username, "password", m.Password); !ok {
		return r
	}

	lvl := level.Player
	if m.Level != "" {
		var err error
		if lvl, err = level.Parse(m.Level); err != nil {
			return result.BadRequest("level: "+err.Error(), "level: %s", err.Error())
		}
	}
	if lvl > level.Player && !caller.AtLeast(level.Management) {
		return result.Forbidden("%s (level %s) create %s account: forbidden", caller, caller.User.Level, lvl)
	}

	created, err := api.Backend.CreateUser(req.Context(), m.Username, m.Password, m.Email, lvl)
	switch {
	case errors.Is(err, serr.ErrAlreadyExists):
		return result.Conflict("User with that username already exists", "user '%s' already exists", m.Username)
	case errors.Is(err, serr.ErrBadArgument):
		return result.BadRequest(err.Error(), err.Error())
	case err != nil:
		return result.InternalServerError(err.Error())
	}

	return result.Created(userModel(created), "%s created %s account '%s'", caller, lvl, created.Username)
}

// User gives the account in the path. Callers below administrator may only
// look at their own.
func (api API) User(req *http.Request) result.Result {
	id := pathID(req)
	caller := middle.CallerOf(req)

	if !caller.Is(id) && !caller.AtLeast(level.Administrator) {
		return result.Forbidden("%s (level %s) get user %s: forbidden", caller, caller.User.Level, id)
	}

	u, err := api.Backend.GetUser(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}
	return result.OK(userModel(u), "%s got %s", caller, whom(caller, u))
}

// DeleteUser removes the account in the path along with its command history
// and disconnects its player. Callers below Management may only delete
// themselves.
func (api API) DeleteUser(req *http.Request) result.Result {
	id := pathID(req)
	caller := middle.CallerOf(req)

	if !caller.Is(id) && !caller.AtLeast(level.Management) {
		return result.Forbidden("%s (level %s) delete user %s: forbidden", caller, caller.User.Level, id)
	}

	deleted, err := api.Backend.DeleteUser(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("delete user %s: %s", id, err.Error())
	}
	return result.NoContent("%s deleted %s", caller, whom(caller, deleted))
}
