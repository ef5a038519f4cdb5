package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

var CLI struct {
	Seed      int64  `short:"s" long:"seed" help:"Shoe seed (0 seeds from the clock)"`
	Decisions string `short:"d" long:"decisions" default:"hit,stand" help:"Comma separated decision script"`
	LogLevel  string `short:"l" long:"log-level" default:"warn" help:"Log level (debug|info|warn|error)"`
}

var (
	dealerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	playerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	resultStyle = lipgloss.NewStyle().Bold(true)
)

func main() {
	ctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}

	decisions, err := parseDecisions(CLI.Decisions)
	if err != nil {
		fmt.Printf("Invalid decisions: %v\n", err)
		ctx.Exit(1)
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	round := game.NewRound()
	slot := game.NewDecisionSlot()
	bus := game.NewEventBus()
	engine := game.NewEngine(round, deck.NewSeededShoe(seed), slot, bus, logger)

	// Two independent subscribers: one renders events, one drives the
	// decision script
	monitorSub := bus.Subscribe()
	feedSub := bus.Subscribe()

	var outcome game.Outcome
	g := new(errgroup.Group)

	g.Go(func() error {
		outcome = engine.Run()
		// Closing the bus ends both subscriber loops once they drain
		bus.Close()
		return nil
	})

	g.Go(func() error {
		for ev := range monitorSub.C() {
			fmt.Println(renderEvent(ev))
		}
		return nil
	})

	g.Go(func() error {
		next := 0
		for ev := range feedSub.C() {
			switch ev.EventType() {
			case game.EventTypePlayerHit, game.EventTypePlayerSplit:
				if next < len(decisions) {
					slot.Put(decisions[next])
					next++
				} else {
					// Script exhausted: stand so the round finishes
					slot.Put(game.Stand)
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("demo round failed", "error", err)
		ctx.Exit(1)
	}

	snap := round.Snapshot()
	fmt.Println()
	fmt.Println(resultStyle.Render(renderOutcome(outcome)))
	fmt.Printf("player: %s (%d)\n", renderHand(snap.Player.Cards), snap.PlayerTotal)
	fmt.Printf("dealer: %s (%d)\n", renderHand(snap.Dealer.Cards), snap.DealerTotal)
	if outcome.Requeue.ShouldRequeue {
		fmt.Printf("requeue: %s\n", outcome.Requeue.DetachedCard)
	}
}

func parseDecisions(s string) ([]game.Action, error) {
	var decisions []game.Action
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		action, ok := game.ActionFromString(part)
		if !ok {
			return nil, fmt.Errorf("unknown action %q", part)
		}
		decisions = append(decisions, action)
	}
	return decisions, nil
}

func renderEvent(ev game.GameEvent) string {
	switch e := ev.(type) {
	case game.DealerHitEvent:
		return dealerStyle.Render(fmt.Sprintf("dealer hits: %s", e.Card))
	case game.DealerStandEvent:
		return dealerStyle.Render("dealer stands")
	case game.PlayerHitEvent:
		return playerStyle.Render(fmt.Sprintf("player hits: %s", e.Card))
	case game.PlayerStandEvent:
		return playerStyle.Render("player stands")
	case game.PlayerSplitEvent:
		return playerStyle.Render(fmt.Sprintf("player splits: %s detached", e.Card))
	case game.PlayerInsureEvent:
		return playerStyle.Render("player insures")
	case game.RoundResultEvent:
		return resultStyle.Render(renderOutcome(e.Outcome))
	case game.ErrorEvent:
		return fmt.Sprintf("error: %s", e.Message)
	default:
		return string(ev.EventType())
	}
}

func renderOutcome(o game.Outcome) string {
	switch {
	case o.PlayerWon:
		return "player wins"
	case o.DealerWon:
		return "dealer wins"
	default:
		return "undecided (tie)"
	}
}

func renderHand(h game.Hand) string {
	if len(h) == 0 {
		return "-"
	}
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
