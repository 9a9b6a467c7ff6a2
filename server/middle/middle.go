// Package middle contains middleware for use with the cmdtree server.
package middle

import (
	"context"
	"net/http"
	"time"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/dekarrin/cmdtree/server/result"
	"github.com/dekarrin/cmdtree/server/token"
	"github.com/google/uuid"
)

// Middleware wraps a handler in another that adds to what it does.
type Middleware func(next http.Handler) http.Handler

// Caller is the client a request came from, as established by Authenticate.
type Caller struct {
	// User is the stored user the caller is logged in as. It is the zero
	// value if LoggedIn is false.
	User dao.User

	LoggedIn bool
}

// Is returns whether the caller is the user with the given ID.
func (c Caller) Is(id uuid.UUID) bool {
	return c.LoggedIn && c.User.ID == id
}

// AtLeast returns whether the caller is logged in at lvl or above.
func (c Caller) AtLeast(lvl level.Level) bool {
	return c.LoggedIn && c.User.Level >= lvl
}

// String describes the caller for logs.
func (c Caller) String() string {
	if !c.LoggedIn {
		return "unauthed client"
	}
	return "user '" + c.User.Username + "'"
}

type callerKey struct{}

// CallerOf returns the caller of req. A request that has not been through
// Authenticate has a caller that is not logged in.
func CallerOf(req *http.Request) Caller {
	c, _ := req.Context().Value(callerKey{}).(Caller)
	return c
}

// WithCaller returns a copy of ctx that has c as its caller.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// Policy decides what Authenticate does with a request that lacks a valid
// token.
type Policy int

const (
	// Optional passes such requests on with a caller that is not logged in.
	Optional Policy = iota

	// Required rejects such requests with an HTTP-401.
	Required
)

// Authenticate gives middleware that reads the bearer token of each request,
// validates it against users, and records the resulting Caller in the request
// context for CallerOf. Rejections are held back by delay before being sent.
func Authenticate(users dao.UserRepository, secret []byte, policy Policy, delay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			user, err := tokenUser(req, users, secret)
			if err != nil && policy == Required {
				time.Sleep(delay)
				result.Unauthorized("", err.Error()).WriteResponse(w)
				return
			}

			c := Caller{User: user, LoggedIn: err == nil}
			next.ServeHTTP(w, req.WithContext(WithCaller(req.Context(), c)))
		})
	}
}

func tokenUser(req *http.Request, users dao.UserRepository, secret []byte) (dao.User, error) {
	tok, err := token.Get(req)
	if err != nil {
		return dao.User{}, err
	}
	return token.Validate(req.Context(), tok, secret, users)
}

// RequireLevel gives middleware that rejects with an HTTP-403 any request
// whose caller is below lvl. It must come after Authenticate.
func RequireLevel(lvl level.Level, delay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			c := CallerOf(req)
			if !c.AtLeast(lvl) {
				time.Sleep(delay)
				result.Forbidden("%s (level %s) needs level %s: forbidden", c, c.User.Level, lvl).WriteResponse(w)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
