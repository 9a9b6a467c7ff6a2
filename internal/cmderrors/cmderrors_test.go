package cmderrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_PlayerMessage(t *testing.T) {
	testCases := []struct {
		name   string
		input  error
		expect string
	}{
		{
			name:   "plain error",
			input:  errors.New("bad"),
			expect: "bad",
		},
		{
			name:   "dispatch error",
			input:  New("You can't do that.", "actor denied"),
			expect: "You can't do that.",
		},
		{
			name:   "wrapped dispatch error",
			input:  fmt.Errorf("dispatch: %w", Wrapf(ErrUsage, "Usage: %s", "/pay [amount]")),
			expect: "Usage: /pay [amount]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, PlayerMessage(tc.input))
		})
	}
}

func Test_Wrap(t *testing.T) {
	assert := assert.New(t)

	err := Wrap(ErrUnknownPlayer, "Who?", "")

	assert.ErrorIs(err, ErrUnknownPlayer)
	assert.NotErrorIs(err, ErrUsage)
	assert.Equal(`got DispatchError("Who?")`, err.Error())
}
