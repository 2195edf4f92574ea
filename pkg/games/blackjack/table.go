package blackjack

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	bj "github.com/fadedpez/twentyone/pkg/services/blackjack"
	walletService "github.com/fadedpez/twentyone/pkg/services/wallet"
)

// Table seats wallet holders at a game and writes every settled round back
// to their wallets. A Table is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	game    *bj.Game
	wallets walletService.WalletService
	logger  *logging.Logger

	// settlement progress for the round in settledRound
	settledRound string
	settled      map[string]bool
}

// NewTable loads a wallet for every name and seats them, in order, at a game
// shuffled with seed
func NewTable(ctx context.Context, wallets walletService.WalletService, seed int64, names ...string) (*Table, error) {
	return newTable(ctx, wallets, entities.NewShuffledDeck(seed), names...)
}

func newTable(ctx context.Context, wallets walletService.WalletService, deck *entities.Deck, names ...string) (*Table, error) {
	if wallets == nil {
		return nil, types.NewGameError(types.ErrInvalidArgument, "wallet service is required")
	}

	players := make([]*bj.Player, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, types.NewGameError(types.ErrInvalidArgument, "player name cannot be empty")
		}
		if seen[name] {
			return nil, types.Errorf(types.ErrInvalidArgument, "%s is seated twice", name)
		}
		seen[name] = true

		wallet, created, err := wallets.GetOrCreateWallet(ctx, name)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, fmt.Sprintf("loading wallet for %s", name), err)
		}
		if created {
			logging.Default.Debug("New wallet for %s", name)
		}
		players = append(players, bj.NewParticipant(name, wallet.Balance))
	}

	game, err := bj.NewGameWithDeck(deck, players)
	if err != nil {
		return nil, err
	}

	return &Table{
		game:    game,
		wallets: wallets,
		logger:  logging.Default,
		settled: make(map[string]bool),
	}, nil
}

// SetLogger replaces the logger of the table and its game
func (t *Table) SetLogger(logger *logging.Logger) {
	if logger == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logger = logger
	t.game.SetLogger(logger)
}

// Game returns the game being played. Callers must not drive it while the
// table is playing a round.
func (t *Table) Game() *bj.Game {
	return t.game
}

// PlayRound plays the current round to the end without user input. Every
// participant bets bet, or their whole balance if that is smaller, and draws
// according to policy. The result is settled into the wallets. Every
// participant must be able to cover some stake; otherwise no bet is placed and
// ErrInvalidBet is returned.
func (t *Table) PlayRound(ctx context.Context, bet int64, policy Policy) ([]bj.RoundResult, error) {
	if policy == nil {
		policy = MimicDealer
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	game := t.game
	players := game.Players()
	stakes := make([]int64, len(players))
	for i, p := range players {
		stakes[i] = min(bet, p.Balance())
		if stakes[i] <= 0 {
			return nil, types.Errorf(types.ErrInvalidBet, "%s cannot bet %d with balance %d", p.Name(), bet, p.Balance())
		}
	}
	for i, p := range players {
		if err := game.PlaceBet(p, stakes[i]); err != nil {
			return nil, err
		}
	}
	if err := game.DealInitialCards(); err != nil {
		return nil, err
	}

	for game.Phase() != bj.PhaseEnd {
		p := game.NextEligiblePlayer()
		if p.IsDealer() {
			if err := game.DealerTurn(); err != nil {
				return nil, err
			}
			continue
		}

		var err error
		if policy.ShouldHit(p.Hand()) && game.CardsRemaining() > 0 {
			err = game.Hit(p)
		} else {
			err = game.Stand(p)
		}
		if err != nil {
			return nil, err
		}
	}

	return t.settle(ctx)
}

// Settle writes the ended round to the wallets. Settling the same round again
// only retries participants whose wallet update failed.
func (t *Table) Settle(ctx context.Context) ([]bj.RoundResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settle(ctx)
}

func (t *Table) settle(ctx context.Context) ([]bj.RoundResult, error) {
	game := t.game
	if game.Phase() != bj.PhaseEnd {
		return nil, types.Errorf(types.ErrInvalidPhase, "round %d has not ended", game.Round())
	}

	roundID := game.RoundID()
	if t.settledRound != roundID {
		t.settledRound = roundID
		t.settled = make(map[string]bool)
	}

	results := game.Results()
	for _, r := range results {
		name := r.Player.Name()
		if t.settled[name] {
			continue
		}

		wallet, err := t.wallets.SettleRound(ctx, name, roundID, r.Stake, r.Credit)
		if err != nil {
			return nil, types.WrapError(types.ErrDatabaseError, fmt.Sprintf("settling %s", name), err)
		}
		t.settled[name] = true

		if wallet.Balance != r.Player.Balance() {
			t.logger.Warn("Wallet for %s holds %d but the table has %d", name, wallet.Balance, r.Player.Balance())
		}
	}

	return results, nil
}

func (t *Table) fullySettled() bool {
	if t.settledRound != t.game.RoundID() {
		return false
	}
	for _, p := range t.game.Players() {
		if !t.settled[p.Name()] {
			return false
		}
	}
	return true
}

// NextRound starts a new round on a deck reshuffled with seed. An ended round
// must be settled first.
func (t *Table) NextRound(seed int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.game.Phase() == bj.PhaseEnd && !t.fullySettled() {
		return types.Errorf(types.ErrInvalidPhase, "round %d has not been settled", t.game.Round())
	}

	t.game.StartNewRound()
	return t.game.Reshuffle(seed)
}
