// Package result contains the outcomes of API requests and writes them out as
// HTTP responses.
//
// Every constructor takes an optional internal message, given as a format
// string and its arguments, that is logged but never sent to the client.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Realm is the realm of the WWW-Authenticate challenge sent with an HTTP-401.
const Realm = "cmdtree server"

// ErrorResponse is the body of every JSON error result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is the outcome of a request, ready to be written as a response.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	body     interface{}
	location string
	headers  [][2]string

	// encoded is body as JSON once PrepareMarshaledResponse succeeds.
	encoded []byte
}

// internal formats the optional internal message given to a constructor,
// using def if there is none.
func internal(def string, v []interface{}) string {
	if len(v) == 0 {
		return def
	}
	return fmt.Sprintf(v[0].(string), v[1:]...)
}

// OK is an HTTP-200 carrying body.
func OK(body interface{}, internalMsg ...interface{}) Result {
	return Response(http.StatusOK, body, "%s", internal("OK", internalMsg))
}

// Created is an HTTP-201 carrying the created resource.
func Created(body interface{}, internalMsg ...interface{}) Result {
	return Response(http.StatusCreated, body, "%s", internal("created", internalMsg))
}

// NoContent is an HTTP-204.
func NoContent(internalMsg ...interface{}) Result {
	return Response(http.StatusNoContent, nil, "%s", internal("no content", internalMsg))
}

// BadRequest is an HTTP-400 telling the client what was wrong with its
// request.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusBadRequest, userMsg, "%s", internal("bad request", internalMsg))
}

// Unauthorized is an HTTP-401 with a challenge for a bearer token. A blank
// userMsg gets a generic one.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return Err(http.StatusUnauthorized, userMsg, "%s", internal("unauthorized", internalMsg)).
		WithHeader("WWW-Authenticate", `Bearer realm="`+Realm+`", charset="utf-8"`)
}

// Forbidden is an HTTP-403.
func Forbidden(internalMsg ...interface{}) Result {
	return Err(http.StatusForbidden, "You don't have permission to do that", "%s", internal("forbidden", internalMsg))
}

// NotFound is an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	return Err(http.StatusNotFound, "The requested resource was not found", "%s", internal("not found", internalMsg))
}

// MethodNotAllowed is an HTTP-405 naming the method and path of req.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, "%s", internal("method not allowed", internalMsg))
}

// Conflict is an HTTP-409 telling the client what its request clashed with.
func Conflict(userMsg string, internalMsg ...interface{}) Result {
	return Err(http.StatusConflict, userMsg, "%s", internal("conflict", internalMsg))
}

// InternalServerError is an HTTP-500. The client only ever sees a generic
// message.
func InternalServerError(internalMsg ...interface{}) Result {
	return Err(http.StatusInternalServerError, "An internal server error occurred", "%s", internal("internal server error", internalMsg))
}

// Response is a successful JSON result. body may only be nil if status is
// http.StatusNoContent.
func Response(status int, body interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		Status:      status,
		IsJSON:      true,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		body:        body,
	}
}

// Err is a JSON error result whose body is an ErrorResponse with userMsg.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	r := Response(status, ErrorResponse{Error: userMsg, Status: status}, internalMsg, v...)
	r.IsErr = true
	return r
}

// TextErr is an error result sent as plain text, for when JSON encoding itself
// cannot be trusted.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		Status:      status,
		IsErr:       true,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		body:        userMsg,
	}
}

// Redirection permanently redirects the client to uri.
func Redirection(uri string) Result {
	return Result{
		Status:      http.StatusPermanentRedirect,
		InternalMsg: "redirect -> " + uri,
		location:    uri,
	}
}

// WithHeader returns a copy of r that also sets the header name to val.
func (r Result) WithHeader(name, val string) Result {
	r.headers = append(append([][2]string(nil), r.headers...), [2]string{name, val})
	r.encoded = nil
	return r
}

// hasBody returns whether r is written with a response body.
func (r Result) hasBody() bool {
	return r.Status != http.StatusNoContent && r.location == ""
}

// PrepareMarshaledResponse encodes the body of r ahead of writing it, so that
// an encoding failure can be reported before anything is sent. Calling it
// again after it succeeds does nothing.
func (r *Result) PrepareMarshaledResponse() error {
	if r.encoded != nil || !r.IsJSON || !r.hasBody() {
		return nil
	}

	data, err := json.Marshal(r.body)
	if err != nil {
		return err
	}
	r.encoded = data
	return nil
}

// WriteResponse writes r to w. It panics if r did not come from one of the
// constructors of this package or if its body cannot be encoded.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}
	if err := r.PrepareMarshaledResponse(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	hdr := w.Header()
	if r.IsJSON {
		hdr.Set("Content-Type", "application/json")
	} else {
		hdr.Set("Content-Type", "text/plain; charset=utf-8")
	}
	hdr.Set("X-Content-Type-Options", "nosniff")
	if r.location != "" {
		hdr.Set("Location", r.location)
	}
	for _, h := range r.headers {
		hdr.Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)

	if !r.hasBody() {
		return
	}
	if r.IsJSON {
		w.Write(r.encoded)
	} else {
		fmt.Fprint(w, r.body)
	}
}
