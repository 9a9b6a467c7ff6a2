package backend

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Login checks username and password against the stored user and, if they
// match, opens a session for it by connecting a player with the user's name
// and level. A user that already has a live session keeps its player. The
// stored user is returned with its login time updated.
//
// A failed check gives an error matching serr.ErrBadCredentials, whether the
// user is unknown or the password is wrong. A name clash with a player that
// is connected but not from this user gives serr.ErrAlreadyExists, and storage
// problems give serr.ErrDB.
func (svc *Service) Login(ctx context.Context, username string, password string) (dao.User, error) {
	user, err := svc.checkPassword(ctx, username, password)
	if err != nil {
		return dao.User{}, err
	}

	if _, err := svc.open(user.ID, user.Username, user.Level); err != nil {
		return dao.User{}, err
	}

	user.LastLoginTime = time.Now()
	stamped, err := svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		svc.close(user.ID)
		return dao.User{}, serr.WrapDB("cannot record login time", err)
	}
	return stamped, nil
}

// checkPassword returns the user called username if password is theirs.
func (svc *Service) checkPassword(ctx context.Context, username, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if errors.Is(err, dao.ErrNotFound) {
		return dao.User{}, serr.ErrBadCredentials
	} else if err != nil {
		return dao.User{}, serr.WrapDB("cannot look up user", err)
	}

	hash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, serr.New("stored password hash is corrupt", err, serr.ErrDB)
	}

	switch err := bcrypt.CompareHashAndPassword(hash, []byte(password)); {
	case err == nil:
		return user, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dao.User{}, serr.ErrBadCredentials
	default:
		return dao.User{}, serr.New("cannot check password", err)
	}
}

// hashPassword gives the stored form of password: its bcrypt hash in base64.
func (svc *Service) hashPassword(password string) (string, error) {
	if password == "" {
		return "", serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), svc.passwordCost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", serr.New("password is too long", err, serr.ErrBadArgument)
	} else if err != nil {
		return "", serr.New("cannot hash password", err)
	}
	return base64.StdEncoding.EncodeToString(hash), nil
}

// Logout ends the session of the user with the given ID, disconnecting its
// player. Its logout time is moved forward, which revokes every token issued
// to it so far. The updated user is returned.
//
// Unknown users give an error matching serr.ErrNotFound and storage problems
// give serr.ErrDB.
func (svc *Service) Logout(ctx context.Context, who uuid.UUID) (dao.User, error) {
	user, err := svc.storedUser(ctx, who)
	if err != nil {
		return dao.User{}, err
	}

	user.LastLogoutTime = time.Now()
	stamped, err := svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		return dao.User{}, serr.WrapDB("cannot record logout time", err)
	}

	svc.close(stamped.ID)
	return stamped, nil
}
