package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/server/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *testClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, api.PathPrefix+path, &reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c *testClient) login(username, password string) api.LoginResponse {
	w := c.do(http.MethodPost, "/login", api.LoginRequest{Username: username, Password: password})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp api.LoginResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.token = resp.Token
	return resp
}

func newTestServer(t *testing.T) *Server {
	srv, err := New(Config{UnauthDelayMillis: -1, MessageWidth: -1})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	srv.Backend().PasswordCost = bcrypt.MinCost

	_, err = srv.Backend().CreateUser(context.Background(), "Boss", "hunter2", "", level.Management)
	require.NoError(t, err)
	return srv
}

func Test_Server_Unauthenticated(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		body         interface{}
		expectStatus int
	}{
		{name: "commands need auth", method: http.MethodGet, path: "/commands", expectStatus: http.StatusUnauthorized},
		{name: "players need auth", method: http.MethodGet, path: "/players", expectStatus: http.StatusUnauthorized},
		{name: "bad login", method: http.MethodPost, path: "/login", body: api.LoginRequest{Username: "Boss", Password: "nope"}, expectStatus: http.StatusUnauthorized},
		{name: "login missing password", method: http.MethodPost, path: "/login", body: api.LoginRequest{Username: "Boss"}, expectStatus: http.StatusBadRequest},
		{name: "info is public", method: http.MethodGet, path: "/info", expectStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/nothing", expectStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/info", expectStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			c := &testClient{t: t, handler: srv.Handler()}

			w := c.do(tc.method, tc.path, tc.body)

			assert.Equal(t, tc.expectStatus, w.Code, w.Body.String())
		})
	}
}

func Test_Server_CommandFlow(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	boss := &testClient{t: t, handler: srv.Handler()}
	bossLogin := boss.login("Boss", "hunter2")

	// create a regular player and log them in
	w := boss.do(http.MethodPost, "/users", api.UserModel{Username: "Alice", Password: "pass"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var alice api.UserModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alice))
	assert.Equal("player", alice.Level)

	aliceClient := &testClient{t: t, handler: srv.Handler()}
	aliceClient.login("Alice", "pass")

	w = boss.do(http.MethodGet, "/players", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var connected []api.PlayerModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &connected))
	assert.Equal([]api.PlayerModel{
		{ID: 0, Name: "Boss", Level: "Management member"},
		{ID: 1, Name: "Alice", Level: "player"},
	}, connected)

	// a handled command
	w = aliceClient.do(http.MethodPost, "/commands", api.CommandRequest{Input: "/msg Boss hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cmd api.CommandModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmd))
	assert.True(cmd.Handled)
	assert.Equal([]string{"[PM to Boss] hello"}, cmd.Responses)

	// chat is not handled
	w = aliceClient.do(http.MethodPost, "/commands", api.CommandRequest{Input: "just chatting"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmd))
	assert.False(cmd.Handled)
	assert.Empty(cmd.Responses)

	w = boss.do(http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs api.MessagesModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	assert.Equal([]string{"[PM from Alice] hello"}, msgs.Messages)

	w = aliceClient.do(http.MethodGet, "/commands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []api.CommandModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal("/msg Boss hello", history[0].Input)

	// a level change made by command is saved to the user
	w = boss.do(http.MethodPost, "/commands", api.CommandRequest{Input: "/level Alice administrator"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = boss.do(http.MethodGet, "/users/"+alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored api.UserModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal("administrator", stored.Level)

	// a player cannot see other users
	w = aliceClient.do(http.MethodGet, "/users/"+bossLogin.UserID, nil)
	assert.Equal(http.StatusForbidden, w.Code)

	// logging out ends the player
	w = aliceClient.do(http.MethodDelete, "/login/"+alice.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Len(srv.Backend().ConnectedPlayers(), 1)

	// and invalidates the old token
	w = aliceClient.do(http.MethodGet, "/commands", nil)
	assert.Equal(http.StatusUnauthorized, w.Code)
}

func Test_Server_Kicked(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	boss := &testClient{t: t, handler: srv.Handler()}
	boss.login("Boss", "hunter2")

	_, err := srv.Backend().CreateUser(context.Background(), "Bob", "pass", "", level.Player)
	require.NoError(t, err)
	bob := &testClient{t: t, handler: srv.Handler()}
	bob.login("Bob", "pass")

	w := boss.do(http.MethodPost, "/commands", api.CommandRequest{Input: "/kick Bob bye"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = bob.do(http.MethodGet, "/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = bob.do(http.MethodPost, "/commands", api.CommandRequest{Input: "/help"})
	assert.Equal(http.StatusConflict, w.Code)

	// logging in again reconnects
	bob.login("Bob", "pass")
	w = bob.do(http.MethodPost, "/commands", api.CommandRequest{Input: "/help"})
	assert.Equal(http.StatusCreated, w.Code)
}

func Test_Server_AccessByLevel(t *testing.T) {
	testCases := []struct {
		name         string
		lvl          level.Level
		method       string
		path         string
		body         interface{}
		expectStatus int
	}{
		{name: "player cannot list users", lvl: level.Player, method: http.MethodGet, path: "/users", expectStatus: http.StatusForbidden},
		{name: "administrator lists users", lvl: level.Administrator, method: http.MethodGet, path: "/users", expectStatus: http.StatusOK},
		{name: "player cannot create users", lvl: level.Player, method: http.MethodPost, path: "/users", body: api.UserModel{Username: "Carol", Password: "pass"}, expectStatus: http.StatusForbidden},
		{name: "administrator creates players", lvl: level.Administrator, method: http.MethodPost, path: "/users", body: api.UserModel{Username: "Carol", Password: "pass"}, expectStatus: http.StatusCreated},
		{name: "administrator cannot create administrators", lvl: level.Administrator, method: http.MethodPost, path: "/users", body: api.UserModel{Username: "Carol", Password: "pass", Level: "administrator"}, expectStatus: http.StatusForbidden},
		{name: "player refreshes token", lvl: level.Player, method: http.MethodPost, path: "/tokens", expectStatus: http.StatusCreated},
		{name: "player gets info", lvl: level.Player, method: http.MethodGet, path: "/info", expectStatus: http.StatusOK},
		{name: "bad user ID is not routed", lvl: level.Administrator, method: http.MethodGet, path: "/users/not-an-id", expectStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t)
			_, err := srv.Backend().CreateUser(context.Background(), "Dave", "pass", "", tc.lvl)
			require.NoError(t, err)
			c := &testClient{t: t, handler: srv.Handler()}
			c.login("Dave", "pass")

			w := c.do(tc.method, tc.path, tc.body)

			assert.Equal(t, tc.expectStatus, w.Code, w.Body.String())
		})
	}
}

func Test_Server_RefreshedTokenWorks(t *testing.T) {
	srv := newTestServer(t)
	c := &testClient{t: t, handler: srv.Handler()}
	first := c.login("Boss", "hunter2")

	w := c.do(http.MethodPost, "/tokens", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var refreshed api.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	assert.Equal(t, first.UserID, refreshed.UserID)

	c.token = refreshed.Token
	w = c.do(http.MethodGet, "/players", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
