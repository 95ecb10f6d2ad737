package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		action  string
		payload map[string]interface{}
	}{
		{"draw", game.ActionDraw, nil},
		{"PASS", game.ActionPass, nil},
		{"play red 5", game.ActionPlay, map[string]interface{}{"color": "red", "value": "5"}},
		{"play wild blue", game.ActionPlay, map[string]interface{}{"value": "Wild", "chosen_color": "blue"}},
		{"play wild4 green", game.ActionPlay, map[string]interface{}{"value": "WildDrawFour", "chosen_color": "green"}},
		{"play wild wild4 yellow", game.ActionPlay, map[string]interface{}{"color": "wild", "value": "wild4", "chosen_color": "yellow"}},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			action, err := parseCommand(tc.line)
			require.NoError(t, err)
			require.NotNil(t, action)
			assert.Equal(t, tc.action, action.ActionType)
			if tc.payload != nil {
				assert.Equal(t, tc.payload, action.Payload)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	_, err := parseCommand("quit")
	assert.ErrorIs(t, err, errQuit)

	action, err := parseCommand("hand")
	assert.NoError(t, err)
	assert.Nil(t, action)

	for _, line := range []string{"dance", "play", "play red", "play red 5 blue extra", "play wild blue red"} {
		_, err := parseCommand(line)
		assert.Error(t, err, line)
	}
}

func TestRunScriptedTurns(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	g, err := game.NewUnoGame([]string{"Alice", "Bob"}, game.WithSeed(11), game.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, g.Deal(0))

	var out bytes.Buffer
	err = run(g, strings.NewReader("pass\ndraw\npass\nhand\nquit\n"), &out)
	assert.ErrorIs(t, err, errQuit)

	text := out.String()
	assert.Contains(t, text, "Cannot do that: must draw a card before passing")
	assert.Contains(t, text, "Alice drew")
	assert.Contains(t, text, "Alice passed. It is now Bob's turn.")
	assert.Equal(t, "Bob", g.CurrentPlayer().Name)
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	g, err := game.NewUnoGame([]string{"Alice", "Bob"}, game.WithSeed(5), game.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, g.Deal(0))

	assert.NoError(t, run(g, strings.NewReader("draw\n"), io.Discard))
}

func TestSeedFlagUnsetByDefault(t *testing.T) {
	assert.False(t, flagSet("seed"), "a random deal unless -seed is given, even -seed 0")
}
