package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Level_Ordering(t *testing.T) {
	assert := assert.New(t)

	assert.Less(Player, Administrator)
	assert.Less(Administrator, Management)
	assert.True(Management.Valid())
	assert.False(Level(-1).Valid())
	assert.False(Level(3).Valid())
}

func Test_Level_Plural(t *testing.T) {
	testCases := []struct {
		name   string
		input  Level
		expect string
	}{
		{name: "player", input: Player, expect: "players"},
		{name: "administrator", input: Administrator, expect: "administrators"},
		{name: "management", input: Management, expect: "Management members"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.input.Plural())
		})
	}
}

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Level
		expectErr bool
	}{
		{name: "player", input: "player", expect: Player},
		{name: "admin short form", input: "Admin", expect: Administrator},
		{name: "administrator", input: "ADMINISTRATOR", expect: Administrator},
		{name: "management", input: " management ", expect: Management},
		{name: "unknown", input: "moderator", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := Parse(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, actual)
		})
	}
}
