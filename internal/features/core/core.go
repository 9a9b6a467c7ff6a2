// Package core provides the commands that every server has: help, player
// listing, private messages and the basic administration commands.
package core

import (
	"fmt"
	"strings"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/command"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/message"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/rosed"
)

const tableWidth = 80

var tableOpts = rosed.Options{
	TableHeaders:             true,
	NoTrailingLineSeparators: true,
}

// Feature is the set of core commands registered with a command manager.
type Feature struct {
	commands *command.Manager
	players  *players.Manager

	// OnLevelChange, if set, is called after /level changes the level of a
	// player.
	OnLevelChange func(p *players.Player, old level.Level)

	registered []string
}

// New registers the core commands with cmds. If any of them cannot be
// registered, the ones that were are removed again and an error is returned.
func New(cmds *command.Manager, pm *players.Manager) (*Feature, error) {
	f := &Feature{
		commands: cmds,
		players:  pm,
	}

	builders := []func() error{
		f.buildHelp,
		f.buildPlayers,
		f.buildStats,
		f.buildMsg,
		f.buildKick,
		f.buildLevel,
		f.buildAnnounce,
	}
	for _, build := range builders {
		if err := build(); err != nil {
			f.Dispose()
			return nil, err
		}
	}

	if err := cmds.Alias("?", "help"); err != nil {
		f.Dispose()
		return nil, err
	}
	if err := cmds.Alias("pm", "msg"); err != nil {
		f.Dispose()
		return nil, err
	}

	return f, nil
}

// Dispose removes every command the feature registered.
func (f *Feature) Dispose() {
	for _, name := range f.registered {
		f.commands.Remove(name)
	}
	f.registered = nil
}

func (f *Feature) track(name string, err error) error {
	if err != nil {
		return fmt.Errorf("register /%s: %w", name, err)
	}
	f.registered = append(f.registered, name)
	return nil
}

func (f *Feature) buildHelp() error {
	err := f.commands.Command("help").
		Parameters([]command.Parameter{{Name: "command", Type: command.Word, Optional: true}}).
		Build(f.onHelp).
		Err()
	return f.track("help", err)
}

func (f *Feature) onHelp(a actor.Actor, args command.Args) bool {
	if !args.Has(0) {
		names := f.commands.Names(a.Level())
		for i := range names {
			names[i] = "/" + names[i]
		}
		a.SendMessage(message.HelpHeader + " " + strings.Join(names, ", "))
		return true
	}

	name := strings.TrimPrefix(args.String(0), "/")
	usages := f.commands.Usage(name, a.Level())
	if len(usages) < 1 {
		a.SendMessage(message.Format(message.CommandUnknown, name))
		return true
	}
	for i := range usages {
		usages[i] = message.Format(message.CommandUsage, usages[i])
	}
	a.SendMessage(strings.Join(usages, "\n"))
	return true
}

func (f *Feature) buildPlayers() error {
	err := f.commands.Command("players").Build(f.onPlayers).Err()
	return f.track("players", err)
}

func (f *Feature) onPlayers(a actor.Actor, _ command.Args) bool {
	all := f.players.All()
	if len(all) < 1 {
		a.SendMessage(message.PlayersNone)
		return true
	}

	data := [][]string{{"ID", "Name", "Level"}}
	for _, p := range all {
		data = append(data, []string{fmt.Sprintf("%d", p.ID()), p.Name(), p.Level().String()})
	}

	table := rosed.Edit("").
		InsertTableOpts(0, data, tableWidth, tableOpts).
		String()

	a.SendMessage(message.Format(message.PlayersHeader, len(all)) + "\n" + table)
	return true
}

func (f *Feature) buildStats() error {
	err := f.commands.Command("stats").
		SubWithDefault(command.PlayerToken, func(a actor.Actor) any { return a }).
		Build(f.onStats).
		Build(nil).
		Err()
	return f.track("stats", err)
}

func (f *Feature) onStats(a actor.Actor, args command.Args) bool {
	target := args.Actor(0)
	a.SendMessage(message.Format(message.StatsLine, target.Name(), target.ID(), target.Level()))
	return true
}

func (f *Feature) buildMsg() error {
	err := f.commands.Command("msg").
		Sub(command.PlayerToken).
		Parameters([]command.Parameter{{Name: "message", Type: command.Sentence}}).
		Build(f.onMsg).
		Build(nil).
		Err()
	return f.track("msg", err)
}

func (f *Feature) onMsg(a actor.Actor, args command.Args) bool {
	target := args.Actor(0)
	text := args.String(1)

	if target.ID() == a.ID() {
		a.SendMessage(message.PrivateSelf)
		return true
	}

	target.SendMessage(message.Format(message.PrivateReceived, a.Name(), text))
	a.SendMessage(message.Format(message.PrivateSent, target.Name(), text))
	return true
}

func (f *Feature) buildKick() error {
	err := f.commands.Command("kick").Restrict(level.Administrator).
		Sub(command.PlayerToken).
		Parameters([]command.Parameter{{Name: "reason", Type: command.Sentence, Optional: true}}).
		Build(f.onKick).
		Build(nil).
		Err()
	return f.track("kick", err)
}

func (f *Feature) onKick(a actor.Actor, args command.Args) bool {
	target := args.Actor(0)
	reason := message.KickNoReason
	if args.Has(1) {
		reason = args.String(1)
	}

	if target.ID() == a.ID() {
		a.SendMessage(message.KickSelf)
		return true
	}
	if target.Level() > a.Level() {
		a.SendMessage(message.Format(message.KickHigher, target.Name()))
		return true
	}

	target.SendMessage(message.Format(message.KickNotify, a.Name(), reason))
	f.players.Disconnect(target.ID())
	f.players.Broadcast(level.Player, message.Format(message.KickAnnounce, target.Name(), a.Name(), reason))
	return true
}

func (f *Feature) buildLevel() error {
	err := f.commands.Command("level").Restrict(level.Management).
		Sub(command.PlayerToken).
		Parameters([]command.Parameter{{Name: "level", Type: command.WordFromSet, Options: level.Names()}}).
		Build(f.onLevel).
		Build(nil).
		Err()
	return f.track("level", err)
}

func (f *Feature) onLevel(a actor.Actor, args command.Args) bool {
	target := f.players.Get(args.Actor(0).ID())
	newLevel, err := level.Parse(args.String(1))
	if target == nil || err != nil {
		return false
	}

	old := target.Level()
	if old == newLevel {
		a.SendMessage(message.Format(message.LevelUnchanged, target.Name(), newLevel))
		return true
	}

	target.SetLevel(newLevel)
	if f.OnLevelChange != nil {
		f.OnLevelChange(target, old)
	}

	a.SendMessage(message.Format(message.LevelChanged, target.Name(), newLevel))
	if target.ID() != a.ID() {
		target.SendMessage(message.Format(message.LevelNotify, a.Name(), newLevel))
	}
	return true
}

func (f *Feature) buildAnnounce() error {
	err := f.commands.Command("announce").Restrict(level.Administrator).
		Parameters([]command.Parameter{{Name: "message", Type: command.Sentence}}).
		Build(f.onAnnounce).
		Err()
	return f.track("announce", err)
}

func (f *Feature) onAnnounce(a actor.Actor, args command.Args) bool {
	f.players.Broadcast(level.Player, message.Format(message.Announcement, args.String(0)))
	return true
}
