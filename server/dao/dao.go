// Package dao provides data access objects for use in the cmdtree server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Commands() CommandRepository
	Close() error
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type CommandRepository interface {

	// Create records a new Command. ID and Created are assigned by the
	// repository.
	Create(ctx context.Context, c Command) (Command, error)
	GetByID(ctx context.Context, id uuid.UUID) (Command, error)

	// GetAllByUser returns the commands entered by the given user, oldest
	// first.
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Command, error)
	Delete(ctx context.Context, id uuid.UUID) (Command, error)

	// DeleteAllByUser removes the history of the given user and returns the
	// number of commands removed.
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Close() error
}

type User struct {
	ID             uuid.UUID
	Username       string
	Password       string
	Email          *mail.Address
	Level          level.Level
	Created        time.Time
	Modified       time.Time
	LastLogoutTime time.Time
	LastLoginTime  time.Time
}

// Command is a single line entered by a user and what came of it.
type Command struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Input     string
	Handled   bool
	Responses Responses
	Created   time.Time
}

// Responses is the list of messages a user received as a result of a
// Command. It is stored in its REZI binary form.
type Responses []string

// MarshalBinary encodes the Responses as a REZI count followed by each
// message.
func (r Responses) MarshalBinary() ([]byte, error) {
	data := rezi.EncInt(len(r))
	for i := range r {
		data = append(data, rezi.EncString(r[i])...)
	}
	return data, nil
}

// UnmarshalBinary decodes data created by MarshalBinary into r.
func (r *Responses) UnmarshalBinary(data []byte) error {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("count: negative value %d", count)
	}
	data = data[n:]

	decoded := make(Responses, count)
	for i := 0; i < count; i++ {
		decoded[i], n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		data = data[n:]
	}

	*r = decoded
	return nil
}
