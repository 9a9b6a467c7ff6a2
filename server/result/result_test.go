package result

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Result_WriteResponse(t *testing.T) {
	testCases := []struct {
		name         string
		result       Result
		expectStatus int
		expectBody   string
		expectHeader map[string]string
	}{
		{
			name:         "ok with object",
			result:       OK(map[string]int{"count": 2}),
			expectStatus: http.StatusOK,
			expectBody:   `{"count":2}`,
			expectHeader: map[string]string{"Content-Type": "application/json"},
		},
		{
			name:         "no content",
			result:       NoContent(),
			expectStatus: http.StatusNoContent,
			expectBody:   "",
		},
		{
			name:         "not found",
			result:       NotFound("no user %d", 3),
			expectStatus: http.StatusNotFound,
			expectBody:   `{"error":"The requested resource was not found","status":404}`,
		},
		{
			name:         "unauthorized has challenge",
			result:       Unauthorized(""),
			expectStatus: http.StatusUnauthorized,
			expectBody:   `{"error":"You are not authorized to do that","status":401}`,
			expectHeader: map[string]string{"WWW-Authenticate": `Bearer realm="cmdtree server", charset="utf-8"`},
		},
		{
			name:         "text error",
			result:       TextErr(http.StatusInternalServerError, "oops", "panic"),
			expectStatus: http.StatusInternalServerError,
			expectBody:   "oops",
			expectHeader: map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		},
		{
			name:         "redirect",
			result:       Redirection("/api/v1/info"),
			expectStatus: http.StatusPermanentRedirect,
			expectHeader: map[string]string{"Location": "/api/v1/info"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			w := httptest.NewRecorder()

			tc.result.WriteResponse(w)

			assert.Equal(tc.expectStatus, w.Code)
			if tc.expectBody != "" && json.Valid([]byte(tc.expectBody)) {
				assert.JSONEq(tc.expectBody, w.Body.String())
			} else {
				assert.Equal(tc.expectBody, w.Body.String())
			}
			for k, v := range tc.expectHeader {
				assert.Equal(v, w.Header().Get(k))
			}
		})
	}
}

func Test_Result_InternalMsg(t *testing.T) {
	r := BadRequest("bad", "field %s: %d", "x", 4)
	assert.Equal(t, "field x: 4", r.InternalMsg)
	assert.True(t, r.IsErr)

	r = Created(struct{}{})
	assert.Equal(t, "created", r.InternalMsg)

	withHdr := r.WithHeader("X-A", "1").WithHeader("X-B", "2")
	w := httptest.NewRecorder()
	withHdr.WriteResponse(w)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-A"))
	assert.Equal(t, "2", w.Header().Get("X-B"))
}
