package command

import (
	"testing"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Manager_Names(t *testing.T) {
	f := newFixture()
	noop := func(a actor.Actor, args Args) bool { return true }

	require.NoError(t, f.mgr.Command("help").Build(noop).Err())
	require.NoError(t, f.mgr.Command("kick").Restrict(level.Administrator).Build(noop).Err())
	require.NoError(t, f.mgr.Command("level").Restrict(level.Management).Build(noop).Err())
	require.NoError(t, f.mgr.Command("announce").Restrict(level.Administrator).Build(noop).Err())

	testCases := []struct {
		name   string
		lvl    level.Level
		expect []string
	}{
		{name: "player", lvl: level.Player, expect: []string{"help"}},
		{name: "administrator", lvl: level.Administrator, expect: []string{"announce", "help", "kick"}},
		{name: "management", lvl: level.Management, expect: []string{"announce", "help", "kick", "level"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, f.mgr.Names(tc.lvl))
		})
	}
}

func Test_Manager_Usage(t *testing.T) {
	f := newFixture()
	noop := func(a actor.Actor, args Args) bool { return true }

	err := f.mgr.Command("world").
		Sub(Lit("add")).Parameters([]Parameter{{Name: "name", Type: Word}}).Build(noop).
		Sub(Lit("purge")).Restrict(level.Administrator).Build(noop).
		Sub(NumberToken).
		Sub(Lit("enter")).Build(noop).
		Build(nil).
		Build(nil).Err()
	require.NoError(t, err)

	assert.Equal(t, []string{"/world add [name]", "/world [number] enter"}, f.mgr.Usage("world", level.Player))
	assert.Equal(t, []string{"/world add [name]", "/world purge", "/world [number] enter"}, f.mgr.Usage("/world", level.Administrator))
	assert.Nil(t, f.mgr.Usage("nope", level.Management))
}

func Test_Manager_Remove(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Someone", level.Player)
	rec := &recorder{}

	require.NoError(t, f.mgr.Command("race").Build(rec.handler("race")).Err())
	require.NoError(t, f.mgr.Alias("r", "race"))

	assert.True(t, f.mgr.Remove("race"))
	assert.False(t, f.mgr.Remove("race"))

	assert.False(t, f.mgr.Dispatch(p, "race"))
	assert.False(t, f.mgr.Dispatch(p, "r"))
	assert.Empty(t, rec.calls)

	// the name is free again
	require.NoError(t, f.mgr.Command("race").Build(rec.handler("race")).Err())
	assert.True(t, f.mgr.Dispatch(p, "race"))
}

func Test_Manager_Alias(t *testing.T) {
	noop := func(a actor.Actor, args Args) bool { return true }

	testCases := []struct {
		name      string
		alias     string
		target    string
		expectErr error
	}{
		{name: "valid", alias: "?", target: "help"},
		{name: "valid with slashes", alias: "/h", target: "/help"},
		{name: "unknown target", alias: "x", target: "nope", expectErr: serr.ErrNotFound},
		{name: "alias of existing command", alias: "kick", target: "help", expectErr: ErrAmbiguousCommand},
		{name: "empty alias", alias: "", target: "help", expectErr: ErrInvalidName},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			p := f.connect(t, "Someone", level.Player)
			rec := &recorder{}
			require.NoError(t, f.mgr.Command("help").Build(rec.handler("help")).Err())
			require.NoError(t, f.mgr.Command("kick").Build(noop).Err())

			err := f.mgr.Alias(tc.alias, tc.target)

			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, f.mgr.Dispatch(p, tc.alias))
			assert.Equal(t, []string{"help"}, rec.names())

			err = f.mgr.Command(tc.alias).Build(noop).Err()
			assert.ErrorIs(t, err, ErrAmbiguousCommand)
		})
	}
}

func Test_Manager_NilLookupFindsNobody(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Someone", level.Player)
	mgr := NewManager(nil, nil)
	rec := &recorder{}

	require.NoError(t, mgr.Command("msg").Sub(PlayerToken).Build(rec.handler("msg")).Build(nil).Err())

	assert.True(t, mgr.Dispatch(p, "msg Someone"))
	assert.Empty(t, rec.calls)
	assert.Equal(t, []string{`Sorry, no player could be found for "Someone".`}, p.Drain())
}
