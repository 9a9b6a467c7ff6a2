package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

const selectUsers = `SELECT id, username, password, level, email, created, modified, last_logout_time, last_login_time FROM users`

// userTable is the accounts of every user that can connect as a player.
type userTable struct {
	db *sql.DB
}

// Create adds user with a new ID. It has never logged in, and counts as
// having last logged out at the moment it was created so that no token can
// predate it.
func (ut userTable) Create(ctx context.Context, user dao.User) (dao.User, error) {
	id := uuid.New()
	now := unixOrZero(time.Now())

	_, err := ut.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password, level, email, created, modified, last_logout_time, last_login_time) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		id.String(), user.Username, user.Password, int(user.Level), emailText(user.Email), now, now, now,
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	return ut.GetByID(ctx, id)
}

func (ut userTable) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	return scanUser(ut.db.QueryRowContext(ctx, selectUsers+` WHERE id = ?`, id.String()))
}

func (ut userTable) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	return scanUser(ut.db.QueryRowContext(ctx, selectUsers+` WHERE username = ?`, username))
}

// GetAll lists every user ordered by ID.
func (ut userTable) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := ut.db.QueryContext(ctx, selectUsers+` ORDER BY id`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return all, err
		}
		all = append(all, u)
	}
	return all, wrapDBError(rows.Err())
}

// Update replaces the user with ID id by user, which may carry a new ID. The
// creation time is kept and the modification time is set to now.
func (ut userTable) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	err := execOne(ctx, ut.db,
		`UPDATE users SET id = ?, username = ?, password = ?, level = ?, email = ?, modified = ?, last_logout_time = ?, last_login_time = ? WHERE id = ?`,
		user.ID.String(), user.Username, user.Password, int(user.Level), emailText(user.Email),
		unixOrZero(time.Now()), unixOrZero(user.LastLogoutTime), unixOrZero(user.LastLoginTime),
		id.String(),
	)
	if err != nil {
		return dao.User{}, err
	}
	return ut.GetByID(ctx, user.ID)
}

// Delete removes the user and, through the foreign key, its history.
func (ut userTable) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, err := ut.GetByID(ctx, id)
	if err != nil {
		return dao.User{}, err
	}
	return u, execOne(ctx, ut.db, `DELETE FROM users WHERE id = ?`, id.String())
}

// Close is a no-op; the connection belongs to the store.
func (ut userTable) Close() error {
	return nil
}

func scanUser(row scanner) (dao.User, error) {
	var u dao.User
	var id, email string
	var lvl int
	var created, modified, loggedOut, loggedIn int64
	if err := row.Scan(&id, &u.Username, &u.Password, &lvl, &email, &created, &modified, &loggedOut, &loggedIn); err != nil {
		return dao.User{}, wrapDBError(err)
	}

	var err error
	if u.ID, err = parseID("id", id); err != nil {
		return dao.User{}, err
	}
	if u.Email, err = parseEmail(email); err != nil {
		return dao.User{}, err
	}
	if u.Level, err = parseLevel(lvl); err != nil {
		return dao.User{}, err
	}
	u.Created = timeOrZero(created)
	u.Modified = timeOrZero(modified)
	u.LastLogoutTime = timeOrZero(loggedOut)
	u.LastLoginTime = timeOrZero(loggedIn)
	return u, nil
}
