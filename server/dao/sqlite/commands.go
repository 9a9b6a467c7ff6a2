package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

const selectCommands = `SELECT id, user_id, input, handled, responses, created FROM commands`

// commandTable is the history of lines every user has executed. Rows carry a
// sequence number so that lines entered within the same second keep their
// order.
type commandTable struct {
	db *sql.DB
}

func (ct commandTable) Create(ctx context.Context, c dao.Command) (dao.Command, error) {
	id := uuid.New()

	_, err := ct.db.ExecContext(ctx,
		`INSERT INTO commands (id, user_id, input, handled, responses, created, seq) VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM commands))`,
		id.String(), c.UserID.String(), c.Input, c.Handled, responsesText(c.Responses), unixOrZero(time.Now()),
	)
	if err != nil {
		return dao.Command{}, wrapDBError(err)
	}
	return ct.GetByID(ctx, id)
}

func (ct commandTable) GetByID(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	return scanCommand(ct.db.QueryRowContext(ctx, selectCommands+` WHERE id = ?`, id.String()))
}

// GetAllByUser lists the history of a user oldest first. A user with no
// history gives an empty, non-nil slice.
func (ct commandTable) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Command, error) {
	rows, err := ct.db.QueryContext(ctx, selectCommands+` WHERE user_id = ? ORDER BY seq`, userID.String())
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	history := []dao.Command{}
	for rows.Next() {
		c, err := scanCommand(rows)
		if err != nil {
			return history, err
		}
		history = append(history, c)
	}
	return history, wrapDBError(rows.Err())
}

func (ct commandTable) Delete(ctx context.Context, id uuid.UUID) (dao.Command, error) {
	c, err := ct.GetByID(ctx, id)
	if err != nil {
		return dao.Command{}, err
	}
	return c, execOne(ctx, ct.db, `DELETE FROM commands WHERE id = ?`, id.String())
}

func (ct commandTable) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	res, err := ct.db.ExecContext(ctx, `DELETE FROM commands WHERE user_id = ?`, userID.String())
	if err != nil {
		return 0, wrapDBError(err)
	}
	n, err := res.RowsAffected()
	return int(n), wrapDBError(err)
}

// Close is a no-op; the connection belongs to the store.
func (ct commandTable) Close() error {
	return nil
}

func scanCommand(row scanner) (dao.Command, error) {
	var c dao.Command
	var id, userID, responses string
	var created int64
	if err := row.Scan(&id, &userID, &c.Input, &c.Handled, &responses, &created); err != nil {
		return dao.Command{}, wrapDBError(err)
	}

	var err error
	if c.ID, err = parseID("id", id); err != nil {
		return dao.Command{}, err
	}
	if c.UserID, err = parseID("user_id", userID); err != nil {
		return dao.Command{}, err
	}
	if c.Responses, err = parseResponses(responses); err != nil {
		return dao.Command{}, err
	}
	c.Created = timeOrZero(created)
	return c, nil
}
