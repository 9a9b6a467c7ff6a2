package backend

import (
	"context"
	"errors"
	"net/mail"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
)

// GetAllUsers returns every account, connected or not.
func (svc *Service) GetAllUsers(ctx context.Context) ([]dao.User, error) {
	users, err := svc.DB.Users().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("cannot list users", err)
	}
	return users, nil
}

// GetUser returns the account with the given ID. A malformed ID gives an error
// matching serr.ErrBadArgument and an unknown one gives serr.ErrNotFound.
func (svc *Service) GetUser(ctx context.Context, id string) (dao.User, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return dao.User{}, err
	}
	return svc.storedUser(ctx, userID)
}

// CreateUser adds an account that can log in and connect as a player called
// username at level lvl. The name must be one a player could take, and email
// may be left blank.
//
// Invalid arguments give an error matching serr.ErrBadArgument. A name that
// another account has gives serr.ErrAlreadyExists.
func (svc *Service) CreateUser(ctx context.Context, username, password, email string, lvl level.Level) (dao.User, error) {
	user := dao.User{Username: username, Level: lvl}

	if err := players.ValidateName(username); err != nil {
		return dao.User{}, err
	}
	if !lvl.Valid() {
		return dao.User{}, serr.New("level is not valid", serr.ErrBadArgument)
	}
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return dao.User{}, serr.New("email is not valid", err, serr.ErrBadArgument)
		}
		user.Email = addr
	}

	var err error
	if user.Password, err = svc.hashPassword(password); err != nil {
		return dao.User{}, err
	}

	created, err := svc.DB.Users().Create(ctx, user)
	if errors.Is(err, dao.ErrConstraintViolation) {
		return dao.User{}, serr.New("a user with that username already exists", serr.ErrAlreadyExists)
	} else if err != nil {
		return dao.User{}, serr.WrapDB("cannot create user", err)
	}

	svc.log.Info("user created", "user", created.Username, "level", created.Level)
	return created, nil
}

// DeleteUser removes the account with the given ID and its command history,
// ending its session if it has one. The removed account is returned.
//
// A malformed ID gives an error matching serr.ErrBadArgument and an unknown
// one gives serr.ErrNotFound.
func (svc *Service) DeleteUser(ctx context.Context, id string) (dao.User, error) {
	userID, err := parseUserID(id)
	if err != nil {
		return dao.User{}, err
	}

	if _, err := svc.DB.Commands().DeleteAllByUser(ctx, userID); err != nil {
		return dao.User{}, serr.WrapDB("cannot delete command history", err)
	}

	deleted, err := svc.DB.Users().Delete(ctx, userID)
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrNotFound
	} else if err != nil {
		return dao.User{}, serr.WrapDB("cannot delete user", err)
	}

	svc.close(deleted.ID)
	svc.log.Info("user deleted", "user", deleted.Username)
	return deleted, nil
}

// UpdateLevel saves the level of p, such as after a /level command, to the
// account p is connected for. Players that are not connected for an account
// are ignored.
func (svc *Service) UpdateLevel(ctx context.Context, p *players.Player) error {
	userID, ok := svc.owner(p)
	if !ok {
		return nil
	}

	user, err := svc.storedUser(ctx, userID)
	if err != nil {
		return err
	}

	user.Level = p.Level()
	if _, err := svc.DB.Users().Update(ctx, user.ID, user); err != nil {
		return serr.WrapDB("cannot save level", err)
	}
	return nil
}

// storedUser gets the account with ID id, giving serr.ErrNotFound if there is
// none.
func (svc *Service) storedUser(ctx context.Context, id uuid.UUID) (dao.User, error) {
	user, err := svc.DB.Users().GetByID(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrNotFound
	} else if err != nil {
		return dao.User{}, serr.WrapDB("cannot look up user", err)
	}
	return user, nil
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, serr.New("ID is not valid", err, serr.ErrBadArgument)
	}
	return id, nil
}
