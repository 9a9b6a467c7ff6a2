// Package sqlite provides a dao.Store that persists data to an SQLite database
// file using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"time"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

// DataFile is the name of the database file kept in the storage directory.
const DataFile = "data.db"

// sqliteConstraint is the primary result code of SQLITE_CONSTRAINT. Extended
// codes keep it in the low byte.
const sqliteConstraint = 19

// schema is run on every open. Command history goes with its user, and stays
// with it across a change of user ID.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		level INTEGER NOT NULL,
		email TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL,
		last_login_time INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS commands (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE,
		input TEXT NOT NULL,
		handled INTEGER NOT NULL,
		responses TEXT NOT NULL,
		created INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS commands_by_user ON commands (user_id, seq);`,
}

type store struct {
	path     string
	db       *sql.DB
	users    userTable
	commands commandTable
}

// NewDatastore opens the database file in storageDir, creating it and its
// tables if they do not yet exist.
func NewDatastore(storageDir string) (dao.Store, error) {
	path := filepath.Join(storageDir, DataFile)

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, wrapDBError(err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema in %s: %w", path, wrapDBError(err))
		}
	}

	return &store{
		path:     path,
		db:       db,
		users:    userTable{db: db},
		commands: commandTable{db: db},
	}, nil
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Commands() dao.CommandRepository {
	return s.commands
}

func (s *store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	return nil
}

// scanner is a *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execOne runs a statement that must change exactly one row, giving
// dao.ErrNotFound if it changed none.
func execOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError(err)
	}
	if n < 1 {
		return dao.ErrNotFound
	}
	return nil
}

// wrapDBError maps driver errors onto the dao errors that callers check for.
func wrapDBError(err error) error {
	var sqliteErr *sqlite.Error
	switch {
	case errors.As(err, &sqliteErr):
		if sqliteErr.Code()&0xff == sqliteConstraint {
			return dao.ErrConstraintViolation
		}
		return errors.New(sqlite.ErrorCodeString[sqliteErr.Code()])
	case errors.Is(err, sql.ErrNoRows):
		return dao.ErrNotFound
	}
	return err
}

// decodeErr marks a stored value that could not be turned back into its
// model form.
func decodeErr(column string, stored any, err error) error {
	return fmt.Errorf("%w: %s %v: %s", dao.ErrDecodingFailure, column, stored, err)
}

// Times are stored as Unix seconds with the zero time stored as 0.
func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(secs int64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func parseID(column, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, decodeErr(column, s, err)
	}
	return id, nil
}

// An unset email is stored as the empty string.
func emailText(email *mail.Address) string {
	if email == nil {
		return ""
	}
	return email.Address
}

func parseEmail(s string) (*mail.Address, error) {
	if s == "" {
		return nil, nil
	}
	email, err := mail.ParseAddress(s)
	if err != nil {
		return nil, decodeErr("email", s, err)
	}
	return email, nil
}

func parseLevel(stored int) (level.Level, error) {
	lvl := level.Level(stored)
	if !lvl.Valid() {
		return lvl, decodeErr("level", stored, errors.New("not a valid level"))
	}
	return lvl, nil
}

// Responses are stored as base64 text of their REZI binary encoding.
func responsesText(r dao.Responses) string {
	return base64.StdEncoding.EncodeToString(rezi.EncBinary(r))
}

func parseResponses(s string) (dao.Responses, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, decodeErr("responses", "(base64)", err)
	}

	var r dao.Responses
	if _, err := rezi.DecBinary(data, &r); err != nil {
		return nil, decodeErr("responses", "(rezi)", err)
	}
	return r, nil
}
