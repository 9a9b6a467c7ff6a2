package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/internal/version"
	"github.com/dekarrin/cmdtree/server/middle"
	"github.com/dekarrin/cmdtree/server/result"
)

// notConnected is the response for a caller whose player has been kicked.
func notConnected(caller middle.Caller, err error) result.Result {
	return result.Conflict("You are not connected; log in again to continue", "%s: %s", caller, err.Error())
}

// Messages drains what the caller's player was sent since the last call.
func (api API) Messages(req *http.Request) result.Result {
	caller := middle.CallerOf(req)

	msgs, err := api.Backend.PendingMessages(req.Context(), caller.User.ID)
	if err != nil {
		if errors.Is(err, serr.ErrNotConnected) {
			return notConnected(caller, err)
		}
		return result.InternalServerError(err.Error())
	}

	if msgs == nil {
		msgs = []string{}
	}
	return result.OK(MessagesModel{Messages: msgs}, "%s got %d message(s)", caller, len(msgs))
}

// Players lists the connected players in the order they joined.
func (api API) Players(req *http.Request) result.Result {
	connected := api.Backend.ConnectedPlayers()
	resp := make([]PlayerModel, len(connected))
	for i := range connected {
		resp[i] = playerModel(connected[i])
	}
	return result.OK(resp, "%s got %d player(s)", middle.CallerOf(req), len(resp))
}

// Info gives the server version and how many players are connected. It does
// not need a login.
func (api API) Info(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.CmdTree = version.Current
	resp.Players = len(api.Backend.ConnectedPlayers())

	return result.OK(resp, "%s got server info", middle.CallerOf(req))
}
