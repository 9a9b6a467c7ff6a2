package command

import (
	"testing"

	"github.com/dekarrin/cmdtree/internal/actor"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseParameters(t *testing.T) {
	pm := players.NewManager()
	alice, err := pm.Connect("Alice", level.Player)
	require.NoError(t, err)

	lookup := func() actor.Lookup { return pm }

	testCases := []struct {
		name     string
		params   []Parameter
		input    string
		expect   Args
		expectOK bool
	}{
		{
			name:     "no parameters",
			params:   []Parameter{},
			input:    "whatever",
			expect:   Args{},
			expectOK: true,
		},
		{
			name:     "number and sentence",
			params:   []Parameter{{Name: "amount", Type: Number}, {Name: "note", Type: Sentence}},
			input:    "10 for the pizza",
			expect:   Args{10.0, "for the pizza"},
			expectOK: true,
		},
		{
			name:     "player rewritten to lookup",
			params:   []Parameter{{Name: "target", Type: Player}},
			input:    "alice",
			expect:   Args{alice},
			expectOK: true,
		},
		{
			name:     "player not connected",
			params:   []Parameter{{Name: "target", Type: Player}},
			input:    "bob",
			expectOK: false,
		},
		{
			name:     "missing optional in the middle",
			params:   []Parameter{{Name: "a", Type: Word}, {Name: "b", Type: Number, Optional: true}},
			input:    "word",
			expect:   Args{"word", nil},
			expectOK: true,
		},
		{
			name:     "missing required after optional",
			params:   []Parameter{{Name: "a", Type: Word, Optional: true}, {Name: "b", Type: Number}},
			input:    "",
			expectOK: false,
		},
		{
			name:     "mismatched optional",
			params:   []Parameter{{Name: "a", Type: Number, Optional: true}},
			input:    "abc",
			expectOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			compiled, err := compileParameters("/test", tc.params, lookup)
			require.NoError(t, err)

			actual, ok := parseParameters(compiled, tc.input)

			assert.Equal(tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(tc.expect, actual)
			}
		})
	}
}

func Test_Args(t *testing.T) {
	assert := assert.New(t)
	pm := players.NewManager()
	alice, _ := pm.Connect("Alice", level.Player)

	args := Args{5.0, "hi", alice, nil}

	assert.True(args.Has(0))
	assert.False(args.Has(3))
	assert.False(args.Has(4))
	assert.False(args.Has(-1))

	assert.Equal(5.0, args.Number(0))
	assert.Equal(0.0, args.Number(1))
	assert.Equal("hi", args.String(1))
	assert.Equal("", args.String(0))
	assert.Equal(alice, args.Actor(2))
	assert.Nil(args.Actor(3))
}

func Test_Args_withDoesNotAlias(t *testing.T) {
	assert := assert.New(t)

	base := make(Args, 1, 10)
	base[0] = "a"

	first := base.with("b")
	second := base.with("c")

	assert.Equal(Args{"a", "b"}, first)
	assert.Equal(Args{"a", "c"}, second)
	assert.Equal(Args{"a"}, base)
}
