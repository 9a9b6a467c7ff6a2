package command

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/internal/strparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Dispatch_Kick(t *testing.T) {
	f := newFixture()
	admin := f.connect(t, "Boss", level.Administrator)
	alice := f.connect(t, "Alice", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("kick").Restrict(level.Administrator).
		Sub(PlayerToken).
		Parameters([]Parameter{{Name: "reason", Type: Sentence, Optional: true}}).
		Build(rec.handler("kick")).
		Build(nil).Err()
	require.NoError(t, err)

	t.Run("player and reason", func(t *testing.T) {
		rec.calls = nil
		handled := f.mgr.Dispatch(admin, "kick Alice being rude")

		assert.True(t, handled)
		require.Len(t, rec.calls, 1)
		assert.Same(t, admin, rec.calls[0].actor)
		assert.Equal(t, Args{alice, "being rude"}, rec.calls[0].args)
		assert.Empty(t, admin.Drain())
	})

	t.Run("player by id without reason", func(t *testing.T) {
		rec.calls = nil
		handled := f.mgr.Dispatch(admin, "/kick 1")

		assert.True(t, handled)
		require.Len(t, rec.calls, 1)
		assert.Equal(t, Args{alice, nil}, rec.calls[0].args)
		assert.False(t, rec.calls[0].args.Has(1))
	})

	t.Run("unknown player", func(t *testing.T) {
		rec.calls = nil
		handled := f.mgr.Dispatch(admin, "kick Zeta")

		assert.True(t, handled)
		assert.Empty(t, rec.calls)
		assert.Equal(t, []string{`Sorry, no player could be found for "Zeta".`}, admin.Drain())
	})

	t.Run("no player token", func(t *testing.T) {
		rec.calls = nil
		handled := f.mgr.Dispatch(admin, "kick")

		assert.True(t, handled)
		assert.Empty(t, rec.calls)
		assert.Equal(t, []string{"Usage: /kick [player]"}, admin.Drain())
	})

	t.Run("insufficient rights", func(t *testing.T) {
		rec.calls = nil
		handled := f.mgr.Dispatch(alice, "kick Boss")

		assert.True(t, handled)
		assert.Empty(t, rec.calls)
		assert.Equal(t, []string{"Sorry, this command is only available to administrators."}, alice.Drain())
	})
}

func Test_Dispatch_FirstMatchInRegistrationOrder(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Trader", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("trade").
		Sub(Lit("buy")).
		Parameters([]Parameter{{Name: "amount", Type: Number}}).
		Build(rec.handler("buy")).
		Sub(Lit("sell")).
		Parameters([]Parameter{{Name: "amount", Type: Number}}).
		Build(rec.handler("sell")).
		Sub(WordToken).Build(rec.handler("word")).
		Build(nil).Err()
	require.NoError(t, err)

	testCases := []struct {
		name       string
		input      string
		expectCall string
		expectArgs Args
	}{
		{name: "buy", input: "trade buy 5", expectCall: "buy", expectArgs: Args{5.0}},
		{name: "sell", input: "trade sell 2.5", expectCall: "sell", expectArgs: Args{2.5}},
		{name: "catch-all", input: "trade swap", expectCall: "word", expectArgs: Args{"swap"}},
		{name: "literal needs word boundary", input: "trade buyer", expectCall: "word", expectArgs: Args{"buyer"}},
		{name: "literal ignores case", input: "TRADE Buy 5", expectCall: "buy", expectArgs: Args{5.0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec.calls = nil

			// repeated to show that routing does not depend on history
			for i := 0; i < 3; i++ {
				assert.True(t, f.mgr.Dispatch(p, tc.input))
			}

			require.Len(t, rec.calls, 3)
			for _, c := range rec.calls {
				assert.Equal(t, tc.expectCall, c.name)
				assert.Equal(t, tc.expectArgs, c.args)
			}
		})
	}
}

func Test_Dispatch_PrivilegeGateShortCircuits(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Pleb", level.Player)
	rec := &recorder{}
	parserCalled := false

	err := f.mgr.Command("secret").Restrict(level.Management).
		Sub(Lit("open")).Build(rec.handler("open")).
		Sub(WordToken).Build(rec.handler("word")).
		Parameters([]Parameter{{Name: "x", Type: Custom, Parser: func(text string) (int, any, bool) {
			parserCalled = true
			return len(text), text, true
		}}}).
		Build(rec.handler("root")).Err()
	require.NoError(t, err)

	inputs := []string{"secret", "secret open", "secret anything at all", "/SECRET open"}
	for _, input := range inputs {
		assert.True(t, f.mgr.Dispatch(p, input), input)
	}

	assert.Empty(t, rec.calls)
	assert.False(t, parserCalled)
	msgs := p.Drain()
	assert.Len(t, msgs, len(inputs))
	for _, msg := range msgs {
		assert.Equal(t, "Sorry, this command is only available to Management members.", msg)
	}
}

func Test_Dispatch_RestrictedChildIsInvisible(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Pleb", level.Player)
	a := f.connect(t, "Boss", level.Administrator)
	rec := &recorder{}

	err := f.mgr.Command("vehicle").
		Sub(Lit("destroy")).Restrict(level.Administrator).Build(rec.handler("destroy")).
		Sub(WordToken).Build(rec.handler("spawn")).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "vehicle destroy"))
	assert.True(t, f.mgr.Dispatch(a, "vehicle destroy"))

	assert.Equal(t, []string{"spawn", "destroy"}, rec.names())
	assert.Equal(t, Args{"destroy"}, rec.calls[0].args)
	assert.Empty(t, p.Drain())
}

func Test_Dispatch_DefaultValue(t *testing.T) {
	f := newFixture()
	alice := f.connect(t, "Alice", level.Player)
	bob := f.connect(t, "Bob", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("stats").
		SubWithDefault(PlayerToken, func(a actor.Actor) any { return a }).
		Build(rec.handler("stats")).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(alice, "stats"))
	assert.True(t, f.mgr.Dispatch(alice, "stats bob"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, Args{alice}, rec.calls[0].args)
	assert.Equal(t, Args{bob}, rec.calls[1].args)
}

func Test_Dispatch_DefaultValueDoesNotConsumeInput(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Racer", level.Player)
	rec := &recorder{}

	// /race [number] start, where the number defaults to 1
	err := f.mgr.Command("race").
		SubWithDefault(NumberToken, func(a actor.Actor) any { return 1.0 }).
		Sub(Lit("start")).Build(rec.handler("start")).
		Build(nil).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "race start"))
	assert.True(t, f.mgr.Dispatch(p, "race 4 start"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, Args{1.0}, rec.calls[0].args)
	assert.Equal(t, Args{4.0}, rec.calls[1].args)
}

func Test_Dispatch_NilDefaultIsNotEntered(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Loner", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("gang").
		SubWithDefault(NumberToken, func(a actor.Actor) any { return nil }).
		Build(rec.handler("gang")).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "gang"))

	assert.Empty(t, rec.calls)
	assert.Equal(t, []string{"Usage: /gang [number]"}, p.Drain())
}

func Test_Dispatch_Usage(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Payer", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("pay").
		Parameters([]Parameter{
			{Name: "amount", Type: Number},
			{Name: "target", Type: Player, Optional: true},
		}).
		Build(rec.handler("pay")).Err()
	require.NoError(t, err)

	assert.Equal(t, []string{"/pay [amount] [target]"}, f.mgr.Usage("pay", level.Player))

	testCases := []struct {
		name      string
		input     string
		expectMsg []string
		expectArg Args
	}{
		{name: "missing required", input: "pay", expectMsg: []string{"Usage: /pay [amount] [target]"}},
		{name: "wrong type", input: "pay lots", expectMsg: []string{"Usage: /pay [amount] [target]"}},
		{name: "optional given but not a player", input: "pay 5 Zeta", expectMsg: []string{"Usage: /pay [amount] [target]"}},
		{name: "optional missing", input: "pay 5", expectArg: Args{5.0, nil}},
		{name: "all given", input: "pay 5 payer", expectArg: Args{5.0, p}},
		{name: "trailing text ignored", input: "pay 5 payer thanks", expectArg: Args{5.0, p}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec.calls = nil
			p.Drain()

			assert.True(t, f.mgr.Dispatch(p, tc.input))

			assert.Equal(t, tc.expectMsg, p.Drain())
			if tc.expectArg == nil {
				assert.Empty(t, rec.calls)
				return
			}
			require.Len(t, rec.calls, 1)
			assert.Equal(t, tc.expectArg, rec.calls[0].args)
		})
	}
}

func Test_Dispatch_UsageOfSubCommand(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Builder", level.Player)

	err := f.mgr.Command("world").
		Sub(Lit("add")).
		Parameters([]Parameter{{Name: "id", Type: Number}}).
		Build(func(a actor.Actor, args Args) bool { return true }).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "world add forty"))
	assert.Equal(t, []string{"Usage: /world add [id]"}, p.Drain())
}

func Test_Dispatch_InertNode(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Pleb", level.Player)
	a := f.connect(t, "Boss", level.Administrator)
	noop := func(a actor.Actor, args Args) bool { return true }

	err := f.mgr.Command("world").
		Sub(Lit("add")).Build(noop).
		Sub(Lit("list")).Build(noop).
		Sub(Lit("purge")).Restrict(level.Administrator).Build(noop).
		Build(nil).Err()
	require.NoError(t, err)
	err = f.mgr.Command("nothing").Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "world"))
	assert.Equal(t, []string{"Usage: /world [add/list]"}, p.Drain())

	assert.True(t, f.mgr.Dispatch(a, "world bogus"))
	assert.Equal(t, []string{"Usage: /world [add/list/purge]"}, a.Drain())

	assert.False(t, f.mgr.Dispatch(p, "nothing"))
	assert.Empty(t, p.Drain())
}

func Test_Dispatch_HandlerResultIsReturned(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Chatty", level.Player)

	err := f.mgr.Command("maybe").
		Parameters([]Parameter{{Name: "word", Type: Word, Optional: true}}).
		Build(func(a actor.Actor, args Args) bool { return args.String(0) == "yes" }).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "maybe yes"))
	assert.False(t, f.mgr.Dispatch(p, "maybe no"))
	assert.False(t, f.mgr.Dispatch(p, "maybe"))
}

func Test_Dispatch_UnknownCommand(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Chatty", level.Player)

	assert.False(t, f.mgr.Dispatch(p, "/nope"))
	assert.False(t, f.mgr.Dispatch(p, "hello there"))
	assert.False(t, f.mgr.Dispatch(p, "   "))
	assert.False(t, f.mgr.Dispatch(p, "/"))
	assert.Empty(t, p.Drain())
}

func Test_Dispatch_NameIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Shouty", level.Player)
	rec := &recorder{}

	require.NoError(t, f.mgr.Command("Help").Build(rec.handler("help")).Err())

	assert.True(t, f.mgr.Dispatch(p, "/HELP"))
	assert.True(t, f.mgr.Dispatch(p, "  help  "))
	assert.Len(t, rec.calls, 2)
}

func Test_Dispatch_WordFromSetAndCustomParameters(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Mod", level.Player)
	rec := &recorder{}

	upper := func(text string) (int, any, bool) {
		w := strparse.FirstWord(text)
		return len(w), strings.ToUpper(w), true
	}

	err := f.mgr.Command("weather").
		Parameters([]Parameter{
			{Name: "kind", Type: WordFromSet, Options: []string{"sunny", "rainy"}},
			{Name: "zone", Type: Custom, Parser: upper},
		}).
		Build(rec.handler("weather")).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "weather RAINY north"))
	assert.True(t, f.mgr.Dispatch(p, "weather snowy north"))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, Args{"rainy", "NORTH"}, rec.calls[0].args)
	assert.Equal(t, []string{"Usage: /weather [kind] [zone]"}, p.Drain())
}

func Test_Dispatch_CarriedArgsAreNotShared(t *testing.T) {
	f := newFixture()
	p := f.connect(t, "Banker", level.Player)
	rec := &recorder{}

	err := f.mgr.Command("bank").
		Sub(NumberToken).
		Sub(Lit("deposit")).Build(rec.handler("deposit")).
		Sub(NumberToken).Build(rec.handler("transfer")).
		Build(nil).
		Build(nil).Err()
	require.NoError(t, err)

	assert.True(t, f.mgr.Dispatch(p, "bank 1 deposit"))
	assert.True(t, f.mgr.Dispatch(p, "bank 2 3"))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, Args{1.0}, rec.calls[0].args)
	assert.Equal(t, Args{2.0, 3.0}, rec.calls[1].args)
}

func Test_Dispatch_ConcurrentOnOneTree(t *testing.T) {
	f := newFixture()
	const workers = 16
	const perWorker = 50

	var actors []*players.Player
	for i := 0; i < workers; i++ {
		actors = append(actors, f.connect(t, fmt.Sprintf("Worker%d", i), level.Administrator))
	}

	var paid, kicked atomic.Int64
	err := f.mgr.Command("pay").
		Sub(NumberToken).
		Sub(PlayerToken).Build(func(a actor.Actor, args Args) bool {
			paid.Add(int64(args.Number(0)))
			args.Actor(1).SendMessage("paid by " + a.Name())
			return true
		}).
		Build(nil).
		Build(nil).Err()
	require.NoError(t, err)
	err = f.mgr.Command("kick").Restrict(level.Management).
		Sub(PlayerToken).Build(func(a actor.Actor, args Args) bool {
			kicked.Add(1)
			return true
		}).
		Build(nil).Err()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range actors {
		wg.Add(1)
		go func(self *players.Player, target string) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				f.mgr.Dispatch(self, "/pay 2 "+target)
				f.mgr.Dispatch(self, "/kick "+target)
				f.mgr.Dispatch(self, "/pay")
			}
		}(actors[i], actors[(i+1)%workers].Name())
	}
	wg.Wait()

	assert.Equal(t, int64(workers*perWorker*2), paid.Load())
	assert.Zero(t, kicked.Load())
	for _, p := range actors {
		msgs := p.Drain()
		// each worker gets paid by its neighbor, and is refused /kick and
		// shown usage for the bare /pay
		assert.Len(t, msgs, perWorker*3, p.Name())
	}
}
