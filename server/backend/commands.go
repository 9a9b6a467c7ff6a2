package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

// Execute dispatches a line of input as the connected player of the given
// user and records it in the user's command history. The returned Command
// holds whether the line was handled along with every message the player had
// received by the time dispatch finished, including any that arrived since
// they were last retrieved. Lines executed for the same user at the same time
// run one after another.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the user is not logged in
// or their player was disconnected, it will match serr.ErrNotConnected. If the
// line is blank, it will match serr.ErrBadArgument. If the error occured due to
// an unexpected problem with the DB, it will match serr.ErrDB.
func (svc *Service) Execute(ctx context.Context, userID uuid.UUID, line string) (dao.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return dao.Command{}, serr.New("input cannot be blank", serr.ErrBadArgument)
	}

	sess, ok := svc.session(userID)
	if !ok {
		return dao.Command{}, serr.ErrNotConnected
	}

	// the outbox is shared by everything the player does, so dispatch, drain
	// and record happen in one turn
	sess.turn.Lock()
	defer sess.turn.Unlock()

	handled := svc.Commands.Dispatch(sess.player, line)
	responses := sess.player.Drain()
	svc.log.Debug("executed", "player", sess.player.Name(), "input", line, "handled", handled, "responses", len(responses))

	c, err := svc.DB.Commands().Create(ctx, dao.Command{
		UserID:    userID,
		Input:     line,
		Handled:   handled,
		Responses: responses,
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Command{}, serr.New("user no longer exists", serr.ErrNotFound)
		}
		return dao.Command{}, serr.WrapDB("could not record command", err)
	}

	return c, nil
}

// CommandHistory returns every command the given user has executed, oldest
// first.
func (svc *Service) CommandHistory(ctx context.Context, userID uuid.UUID) ([]dao.Command, error) {
	history, err := svc.DB.Commands().GetAllByUser(ctx, userID)
	if err != nil {
		return nil, serr.WrapDB("could not get command history", err)
	}
	return history, nil
}

// PendingMessages returns and clears the messages the connected player of the
// given user has received since they were last retrieved. Messages sent to a
// player just before it was disconnected, such as a kick notice, are still
// returned once, after which the user is no longer considered connected.
//
// The returned error, if non-nil, will match serr.ErrNotConnected if the user
// has no player.
func (svc *Service) PendingMessages(ctx context.Context, userID uuid.UUID) ([]string, error) {
	sess, live := svc.session(userID)
	if sess == nil {
		return nil, serr.ErrNotConnected
	}

	sess.turn.Lock()
	defer sess.turn.Unlock()

	msgs := sess.player.Drain()
	if !live {
		svc.log.Debug("delivered final messages", "player", sess.player.Name(), "count", len(msgs))
	}
	return msgs, nil
}

// ConnectedPlayers returns all currently connected players ordered by ID.
func (svc *Service) ConnectedPlayers() []*players.Player {
	return svc.Players.All()
}
