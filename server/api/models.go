package api

import (
	"time"

	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/server/dao"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type UserModel struct {
	URI            string `json:"uri"`
	ID             string `json:"id,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Email          string `json:"email,omitempty"`
	Level          string `json:"level,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	LastLogoutTime string `json:"last_logout,omitempty"`
	LastLoginTime  string `json:"last_login,omitempty"`
}

type CommandRequest struct {
	Input string `json:"input"`
}

type CommandModel struct {
	URI       string   `json:"uri"`
	ID        string   `json:"id"`
	Input     string   `json:"input"`
	Handled   bool     `json:"handled"`
	Responses []string `json:"responses"`
	Created   string   `json:"created"`
}

type MessagesModel struct {
	Messages []string `json:"messages"`
}

type PlayerModel struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		CmdTree string `json:"cmdtree"`
	} `json:"version"`
	Players int `json:"players"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func userModel(u dao.User) UserModel {
	m := UserModel{
		URI:            PathPrefix + "/users/" + u.ID.String(),
		ID:             u.ID.String(),
		Username:       u.Username,
		Level:          u.Level.String(),
		Created:        formatTime(u.Created),
		Modified:       formatTime(u.Modified),
		LastLogoutTime: formatTime(u.LastLogoutTime),
		LastLoginTime:  formatTime(u.LastLoginTime),
	}
	if u.Email != nil {
		m.Email = u.Email.Address
	}
	return m
}

func commandModel(c dao.Command) CommandModel {
	resps := []string(c.Responses)
	if resps == nil {
		resps = []string{}
	}
	return CommandModel{
		URI:       PathPrefix + "/commands/" + c.ID.String(),
		ID:        c.ID.String(),
		Input:     c.Input,
		Handled:   c.Handled,
		Responses: resps,
		Created:   formatTime(c.Created),
	}
}

func playerModel(p *players.Player) PlayerModel {
	return PlayerModel{
		ID:    p.ID(),
		Name:  p.Name(),
		Level: p.Level().String(),
	}
}
