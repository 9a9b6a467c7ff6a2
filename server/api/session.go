package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/dekarrin/cmdtree/server/middle"
	"github.com/dekarrin/cmdtree/server/result"
	"github.com/dekarrin/cmdtree/server/token"
)

// CreateLogin checks the username and password in the body and connects the
// user as a player. The response carries a token for the new session.
func (api API) CreateLogin(req *http.Request) result.Result {
	var creds LoginRequest
	if err := decodeBody(req, &creds); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if r, ok := requireFields("username", creds.Username, "password", creds.Password); !ok {
		return r
	}

	user, err := api.Backend.Login(req.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, serr.ErrBadCredentials):
		return result.Unauthorized(serr.ErrBadCredentials.Error(), "login as '%s': %s", creds.Username, err.Error())
	case errors.Is(err, serr.ErrAlreadyExists):
		return result.Conflict("A player with that name is already connected", "login as '%s': %s", creds.Username, err.Error())
	case err != nil:
		return result.InternalServerError(err.Error())
	}

	return api.issueToken(user, "connected")
}

// RefreshToken issues a new token to the caller. The old one stays valid
// until it expires or the caller logs out.
func (api API) RefreshToken(req *http.Request) result.Result {
	return api.issueToken(middle.CallerOf(req).User, "refreshed token")
}

func (api API) issueToken(user dao.User, what string) result.Result {
	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("generate token for '%s': %s", user.Username, err.Error())
	}
	return result.Created(LoginResponse{Token: tok, UserID: user.ID.String()}, "user '%s' %s", user.Username, what)
}

// DeleteLogin ends the session of the user in the path. Its player is
// disconnected and every token issued to it stops working. Callers below
// administrator may only end their own session.
func (api API) DeleteLogin(req *http.Request) result.Result {
	id := pathID(req)
	caller := middle.CallerOf(req)

	if !caller.Is(id) && !caller.AtLeast(level.Administrator) {
		return result.Forbidden("%s (level %s) log out %s: forbidden", caller, caller.User.Level, id)
	}

	user, err := api.Backend.Logout(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("log out %s: %s", id, err.Error())
	}

	return result.NoContent("%s logged out %s", caller, whom(caller, user))
}

// whom names target in a log message about something caller did to it.
func whom(caller middle.Caller, target dao.User) string {
	if caller.Is(target.ID) {
		return "self"
	}
	return "user '" + target.Username + "'"
}

// requireFields takes pairs of field names and values and gives an HTTP-400
// naming the first that is empty.
func requireFields(pairs ...string) (result.Result, bool) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			name := pairs[i]
			return result.BadRequest(name+": property is empty or missing from request", "empty %s", name), false
		}
	}
	return result.Result{}, true
}
