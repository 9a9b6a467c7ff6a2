package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/middle"
	"github.com/dekarrin/cmdtree/server/result"
)

// Execute runs the input line in the body as the caller's player. The
// response holds whether a command took it and what the player was sent.
// Lines that no command takes are chat and are still recorded.
func (api API) Execute(req *http.Request) result.Result {
	caller := middle.CallerOf(req)

	var cmdReq CommandRequest
	if err := decodeBody(req, &cmdReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	c, err := api.Backend.Execute(req.Context(), caller.User.ID, cmdReq.Input)
	switch {
	case errors.Is(err, serr.ErrBadArgument):
		return result.BadRequest("input: property is empty or missing from request", err.Error())
	case errors.Is(err, serr.ErrNotConnected):
		return notConnected(caller, err)
	case errors.Is(err, serr.ErrNotFound):
		return result.NotFound(err.Error())
	case err != nil:
		return result.InternalServerError(err.Error())
	}

	return result.Created(commandModel(c), "%s ran %q (handled=%t)", caller, c.Input, c.Handled)
}

// History gives every line the caller has executed, oldest first.
func (api API) History(req *http.Request) result.Result {
	caller := middle.CallerOf(req)

	history, err := api.Backend.CommandHistory(req.Context(), caller.User.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]CommandModel, len(history))
	for i := range history {
		resp[i] = commandModel(history[i])
	}
	return result.OK(resp, "%s got %d command(s) of history", caller, len(resp))
}
