// cmd/uno/main.go is a hot-seat console game: every player shares one terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

const usage = `commands:
  play <color> <value> [chosen]   e.g. "play red 5", "play wild wild4 blue", "play wild green"
  draw                            draw the top card
  pass                            end the turn after drawing
  hand                            show the table again
  quit                            leave the game`

var errQuit = errors.New("quit")

func main() {
	players := flag.String("players", "Alice,Bob", "comma separated player names in seating order")
	seed := flag.Int64("seed", 0, "shuffle seed; when unset the deal is random")
	hand := flag.Int("hand", game.DefaultHandSize, "cards dealt to each player")
	verbose := flag.Bool("v", false, "log engine debug output to stderr")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	opts := []game.Option{game.WithLogger(logger)}
	if flagSet("seed") {
		opts = append(opts, game.WithSeed(*seed))
	}
	g, err := game.NewUnoGame(strings.Split(*players, ","), opts...)
	if err != nil {
		logger.WithError(err).Fatal("Could not set up the game")
	}
	if err := g.Deal(*hand); err != nil {
		logger.WithError(err).Fatal("Could not deal")
	}

	if err := run(g, os.Stdin, os.Stdout); err != nil && !errors.Is(err, errQuit) {
		logger.WithError(err).Fatal("Console closed")
	}
}

// flagSet reports whether the named flag was given on the command line.
func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// run reads commands from in until the game ends, the input closes or the player quits.
func run(g *game.UnoGame, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, usage)
	fmt.Fprintf(out, "\n%s\n", g.CurrentPlayerInfo())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s> ", g.CurrentPlayer().Name)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		action, err := parseCommand(line)
		switch {
		case errors.Is(err, errQuit):
			return err
		case err != nil:
			fmt.Fprintf(out, "%v\n%s\n", err, usage)
			continue
		}
		if action == nil {
			fmt.Fprintf(out, "%s\n", g.CurrentPlayerInfo())
			continue
		}

		msg, err := g.HandleAction(*action)
		if err != nil {
			fmt.Fprintf(out, "Cannot do that: %v\n", err)
			continue
		}
		fmt.Fprintln(out, msg)

		if winner, ok := g.CheckWinner(); ok {
			fmt.Fprintf(out, "%s wins!\n", winner)
			return nil
		}
		if action.ActionType != game.ActionDraw {
			fmt.Fprintf(out, "\n%s\n", g.CurrentPlayerInfo())
		}
	}
}

// parseCommand turns one input line into an engine action. A nil action with a nil error
// asks for the table to be shown.
func parseCommand(line string) (*models.GameAction, error) {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "quit", "exit", "q":
		return nil, errQuit
	case "hand", "show":
		return nil, nil
	case "draw", "d":
		return &models.GameAction{ActionType: game.ActionDraw}, nil
	case "pass", "p":
		return &models.GameAction{ActionType: game.ActionPass}, nil
	case "play":
		return parsePlay(fields[1:])
	}
	return nil, fmt.Errorf("unknown command %q", fields[0])
}

func parsePlay(args []string) (*models.GameAction, error) {
	if len(args) == 0 {
		return nil, errors.New("play needs a card")
	}
	payload := map[string]interface{}{}

	// "play wild4 red" and "play wild wild4 red" both name a wild card.
	if value, err := models.ParseValue(args[0]); err == nil && value.IsWild() && !namesValue(args[1:]) {
		payload["value"] = string(value)
		if len(args) > 2 {
			return nil, errors.New("play takes at most one chosen color")
		}
		if len(args) == 2 {
			payload["chosen_color"] = args[1]
		}
		return &models.GameAction{ActionType: game.ActionPlay, Payload: payload}, nil
	}

	if len(args) < 2 || len(args) > 3 {
		return nil, errors.New("play needs a color and a value")
	}
	payload["color"] = args[0]
	payload["value"] = args[1]
	if len(args) == 3 {
		payload["chosen_color"] = args[2]
	}
	return &models.GameAction{ActionType: game.ActionPlay, Payload: payload}, nil
}

func namesValue(args []string) bool {
	if len(args) == 0 {
		return false
	}
	_, err := models.ParseValue(args[0])
	return err == nil
}
