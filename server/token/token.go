// Package token issues and validates the JWTs used to authenticate with the
// cmdtree server.
//
// A token names the user it was issued to and the player name that user
// connects as. It is signed with a key derived from the server secret, the
// user's password hash and the time the user last logged out, so changing the
// password or logging out revokes every token issued before.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is the issuer set on and required of every token.
const Issuer = "cts"

// Lifetime is how long a token is valid for after it is issued.
const Lifetime = time.Hour

// Claims are the claims carried by a cmdtree token.
type Claims struct {
	jwt.RegisteredClaims

	// Player is the name the user connects as.
	Player string `json:"player"`
}

var parser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	jwt.WithIssuer(Issuer),
	jwt.WithLeeway(time.Minute),
)

// Generate issues a token for u.
func Generate(secret []byte, u dao.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
		Player: u.Username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(signingKey(secret, u))
}

// Validate checks tok and returns the stored user it was issued to.
func Validate(ctx context.Context, tok string, secret []byte, users dao.UserRepository) (dao.User, error) {
	var user dao.User

	keyFor := func(t *jwt.Token) (interface{}, error) {
		claims := t.Claims.(*Claims)
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject is not a user ID: %w", err)
		}

		user, err = users.GetByID(ctx, id)
		if errors.Is(err, dao.ErrNotFound) {
			return nil, fmt.Errorf("subject does not exist")
		} else if err != nil {
			return nil, fmt.Errorf("subject could not be looked up")
		}
		if claims.Player != user.Username {
			return nil, fmt.Errorf("token is for a different player name")
		}
		return signingKey(secret, user), nil
	}

	if _, err := parser.ParseWithClaims(tok, &Claims{}, keyFor); err != nil {
		return dao.User{}, err
	}
	return user, nil
}

// Get returns the bearer token in the Authorization header of req.
func Get(req *http.Request) (string, error) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return strings.TrimSpace(tok), nil
}

func signingKey(secret []byte, u dao.User) []byte {
	key := append([]byte(nil), secret...)
	key = append(key, u.Password...)
	return strconv.AppendInt(key, u.LastLogoutTime.UnixNano(), 10)
}
