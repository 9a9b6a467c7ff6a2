// Package api provides the HTTP endpoints of the cmdtree server. Each endpoint
// is a method of API that turns a request into a result.Result; Handle adapts
// one for use with a router.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/server/backend"
	"github.com/dekarrin/cmdtree/server/result"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PathPrefix is where the API is mounted.
const PathPrefix = "/api/v1"

// maxBodySize bounds request bodies. Command lines and credentials are short.
const maxBodySize = 64 << 10

var httpLog = logger.For("http")

// API serves the HTTP endpoints of a cmdtree server by calling into Backend.
// For access to a server from Go code, use [backend.Service] directly.
type API struct {
	Backend *backend.Service

	// UnauthDelay holds back HTTP-401, HTTP-403 and HTTP-500 responses so that
	// clients probing for credentials or permissions are slowed down.
	UnauthDelay time.Duration

	// Secret signs issued tokens.
	Secret []byte
}

// EndpointFunc produces the result of a single request.
type EndpointFunc func(req *http.Request) result.Result

// Handle adapts ep into a handler that logs and writes its result.
func (api API) Handle(ep EndpointFunc) http.HandlerFunc {
	return Endpoint(api.UnauthDelay, ep)
}

// Endpoint adapts ep into a handler that logs and writes its result, holding
// back failures by unauthDelay. A panic in ep becomes an HTTP-500.
func Endpoint(unauthDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer recoverTo500(w, req)

		r := ep(req)
		if r.Status == 0 {
			r = result.InternalServerError("endpoint gave no result")
		}
		if err := r.PrepareMarshaledResponse(); err != nil {
			r = result.InternalServerError("marshal response: %s", err.Error())
		}

		switch r.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError:
			time.Sleep(unauthDelay)
		}
		Respond(w, req, r)
	}
}

func recoverTo500(w http.ResponseWriter, req *http.Request) {
	v := recover()
	if v == nil {
		return
	}
	Respond(w, req, result.TextErr(http.StatusInternalServerError, "An internal server error occurred", "panic: %v\n%s", v, debug.Stack()))
}

// Respond logs r as the outcome of req and writes it to w. Error results are
// logged at error level.
func Respond(w http.ResponseWriter, req *http.Request, r result.Result) {
	lvl := log.InfoLevel
	if r.IsErr {
		lvl = log.ErrorLevel
	}
	LogResponse(lvl, req, r.Status, r.InternalMsg)
	r.WriteResponse(w)
}

// LogResponse logs the outcome of req at lvl.
func LogResponse(lvl log.Level, req *http.Request, status int, msg string) {
	client, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		client = req.RemoteAddr
	}
	httpLog.Log(lvl, fmt.Sprintf("%s %s %s: HTTP-%d %s", client, req.Method, req.URL.Path, status, msg))
}

// pathID returns the user ID in the URL of req. Routes only match valid
// UUIDs, so a missing or bad one is a routing bug and panics.
func pathID(req *http.Request) uuid.UUID {
	return uuid.MustParse(chi.URLParam(req, "id"))
}

// decodeBody reads the JSON body of req into v. Errors match
// serr.ErrBodyUnmarshal when the body itself is at fault.
func decodeBody(req *http.Request, v interface{}) error {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return serr.New("request content-type is not application/json", serr.ErrBodyUnmarshal)
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, req.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return serr.New("request body is too large", serr.ErrBodyUnmarshal)
		}
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return nil
}
