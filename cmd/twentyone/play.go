package main

import (
	"fmt"

	"github.com/fadedpez/twentyone/pkg/games/blackjack"
)

// PlayCmd stops at the first round a player cannot bet in
type PlayCmd struct {
	Players  []string `arg:"" name:"player" help:"Names of the seated players, in seating order (1-7)"`
	Rounds   int      `kong:"default='5',help='Number of rounds to play'"`
	Bet      int64    `kong:"default='10',help='Bet per player per round. A short balance bets what is left; an empty wallet stops the run'"`
	HitBelow int      `kong:"default='17',help='Players hit while their best value is below this'"`
	Seed     int64    `kong:"help='Deck seed for the first round (0 uses DECK_SEED, then the clock)'"`
}

func (c *PlayCmd) Run(a *app) error {
	if c.Rounds <= 0 {
		return fmt.Errorf("--rounds must be positive, got %d", c.Rounds)
	}
	if c.Bet <= 0 {
		return fmt.Errorf("--bet must be positive, got %d", c.Bet)
	}

	repo, wallets, err := a.openWallets(a.ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	seed := c.Seed
	if seed == 0 {
		seed = a.cfg.DeckSeed
	}
	nextSeed := func(round int) int64 {
		if seed == 0 {
			return a.clock.Now().UnixNano()
		}
		return seed + int64(round)
	}

	table, err := blackjack.NewTable(a.ctx, wallets, nextSeed(0), c.Players...)
	if err != nil {
		return err
	}
	table.SetLogger(a.logger)
	policy := blackjack.HitBelow(c.HitBelow)

	for round := 0; round < c.Rounds; round++ {
		if round > 0 {
			if err := table.NextRound(nextSeed(round)); err != nil {
				return err
			}
		}

		game := table.Game()
		results, err := table.PlayRound(a.ctx, c.Bet, policy)
		if err != nil {
			return fmt.Errorf("round %d: %w", game.Round(), err)
		}

		fmt.Fprintf(a.out, "Round %d (%s)\n", game.Round(), game.RoundID())
		fmt.Fprint(a.out, game.StateSummary())
		for _, r := range results {
			fmt.Fprintf(a.out, "  %s %s %+d, balance %d\n", r.Player.Name(), r.Result, r.Net(), r.Player.Balance())
		}
	}

	return nil
}
