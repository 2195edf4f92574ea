package blackjack

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	walletRepo "github.com/fadedpez/twentyone/pkg/repositories/wallet"
	bj "github.com/fadedpez/twentyone/pkg/services/blackjack"
	walletService "github.com/fadedpez/twentyone/pkg/services/wallet"
	mock_wallet_service "github.com/fadedpez/twentyone/pkg/services/wallet/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var quietLogger = logging.NewLoggerWithWriter(io.Discard, logging.ERROR)

// Alice stands on 18, Bob hits 14 to 16 and busts on 26, the dealer stands on 17
func stackedRound(t *testing.T) *entities.Deck {
	c := entities.NewCard
	deck, err := entities.StackDeck(
		c(entities.Ten, entities.Hearts), c(entities.Five, entities.Hearts), c(entities.Ten, entities.Spades),
		c(entities.Eight, entities.Clubs), c(entities.Nine, entities.Clubs), c(entities.Seven, entities.Spades),
		c(entities.Two, entities.Diamonds), c(entities.Ten, entities.Diamonds),
	)
	if err != nil {
		t.Fatalf("stack deck: %v", err)
	}
	return deck
}

type TableTestSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	wallets *mock_wallet_service.MockWalletService
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableTestSuite))
}

func (s *TableTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.wallets = mock_wallet_service.NewMockWalletService(s.ctrl)
}

func (s *TableTestSuite) expectWallet(name string, balance int64) {
	s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), name).
		Return(&entities.Wallet{UserID: name, Balance: balance}, false, nil)
}

func (s *TableTestSuite) table(deck *entities.Deck, names ...string) *Table {
	table, err := newTable(s.ctx, s.wallets, deck, names...)
	s.Require().NoError(err)
	table.SetLogger(quietLogger)
	return table
}

func (s *TableTestSuite) TestNewTableSeatsWalletBalances() {
	s.expectWallet("alice", 250)
	s.expectWallet("bob", 40)

	table := s.table(entities.NewDeck(), "alice", "bob")

	players := table.Game().Players()
	s.Require().Len(players, 2)
	s.Equal("alice", players[0].Name())
	s.Equal(int64(250), players[0].Balance())
	s.Equal("bob", players[1].Name())
	s.Equal(int64(40), players[1].Balance())
}

func (s *TableTestSuite) TestNewTableErrors() {
	_, err := newTable(s.ctx, nil, entities.NewDeck(), "alice")
	s.True(types.IsGameError(err, types.ErrInvalidArgument))

	_, err = newTable(s.ctx, s.wallets, entities.NewDeck(), "")
	s.True(types.IsGameError(err, types.ErrInvalidArgument))

	s.expectWallet("alice", 100)
	_, err = newTable(s.ctx, s.wallets, entities.NewDeck(), "alice", "alice")
	s.True(types.IsGameError(err, types.ErrInvalidArgument))

	_, err = newTable(s.ctx, s.wallets, entities.NewDeck())
	s.True(types.IsGameError(err, types.ErrInvalidArgument), "a table needs players")

	dbErr := errors.New("locked")
	s.wallets.EXPECT().GetOrCreateWallet(gomock.Any(), "carol").Return(nil, false, dbErr)
	_, err = newTable(s.ctx, s.wallets, entities.NewDeck(), "carol")
	s.True(types.IsGameError(err, types.ErrDatabaseError))
	s.ErrorIs(err, dbErr)
}

func (s *TableTestSuite) TestPlayRoundSettlesWallets() {
	s.expectWallet("alice", 100)
	s.expectWallet("bob", 100)
	table := s.table(stackedRound(s.T()), "alice", "bob")
	roundID := table.Game().RoundID()

	gomock.InOrder(
		s.wallets.EXPECT().SettleRound(gomock.Any(), "alice", roundID, int64(10), int64(20)).
			Return(&entities.Wallet{UserID: "alice", Balance: 110}, nil),
		s.wallets.EXPECT().SettleRound(gomock.Any(), "bob", roundID, int64(10), int64(0)).
			Return(&entities.Wallet{UserID: "bob", Balance: 90}, nil),
	)

	results, err := table.PlayRound(s.ctx, 10, HitBelow(17))

	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(bj.ResultWin, results[0].Result)
	s.Equal(18, results[0].Value)
	s.Equal(bj.ResultLose, results[1].Result)
	s.True(results[1].Bust)
	s.Equal(17, results[0].DealerValue)

	// Already settled: no more wallet calls
	again, err := table.Settle(s.ctx)
	s.Require().NoError(err)
	s.Equal(results, again)
}

func (s *TableTestSuite) TestSettleRetriesOnlyFailedPlayers() {
	s.expectWallet("alice", 100)
	s.expectWallet("bob", 100)
	table := s.table(stackedRound(s.T()), "alice", "bob")
	roundID := table.Game().RoundID()
	dbErr := errors.New("busy")

	gomock.InOrder(
		s.wallets.EXPECT().SettleRound(gomock.Any(), "alice", roundID, int64(10), int64(20)).
			Return(&entities.Wallet{Balance: 110}, nil),
		s.wallets.EXPECT().SettleRound(gomock.Any(), "bob", roundID, int64(10), int64(0)).
			Return(nil, dbErr),
		s.wallets.EXPECT().SettleRound(gomock.Any(), "bob", roundID, int64(10), int64(0)).
			Return(&entities.Wallet{Balance: 90}, nil),
	)

	_, err := table.PlayRound(s.ctx, 10, HitBelow(17))
	s.ErrorIs(err, dbErr)
	s.True(types.IsGameError(table.NextRound(1), types.ErrInvalidPhase), "unsettled rounds block the next one")

	_, err = table.Settle(s.ctx)
	s.Require().NoError(err)
	s.NoError(table.NextRound(1))
}

func (s *TableTestSuite) TestSettleBeforeEnd() {
	s.expectWallet("alice", 100)
	table := s.table(entities.NewDeck(), "alice")

	_, err := table.Settle(s.ctx)

	s.True(types.IsGameError(err, types.ErrInvalidPhase))
}

func (s *TableTestSuite) TestPlayRoundBetsWholeBalanceWhenShort() {
	s.expectWallet("alice", 4)
	table := s.table(stackedRound(s.T()), "alice")
	s.wallets.EXPECT().SettleRound(gomock.Any(), "alice", gomock.Any(), int64(4), gomock.Any()).
		Return(&entities.Wallet{Balance: 0}, nil)

	results, err := table.PlayRound(s.ctx, 10, HitBelow(17))

	s.Require().NoError(err)
	s.Equal(int64(4), results[0].Stake)
}

func (s *TableTestSuite) TestPlayRoundBrokePlayer() {
	s.expectWallet("alice", 100)
	s.expectWallet("bob", 0)
	table := s.table(entities.NewDeck(), "alice", "bob")

	_, err := table.PlayRound(s.ctx, 10, nil)

	s.True(types.IsGameError(err, types.ErrInvalidBet))
	alice := table.Game().Players()[0]
	s.Zero(alice.CurrentBet(), "no bet is placed when anyone is broke")
	s.Equal(int64(100), alice.Balance())
	s.Equal(bj.PhaseStarted, table.Game().Phase())
}

func (s *TableTestSuite) TestNextRound() {
	s.expectWallet("alice", 100)
	table := s.table(entities.NewDeck(), "alice")
	first := table.Game().RoundID()

	s.Require().NoError(table.NextRound(99))

	game := table.Game()
	s.Equal(2, game.Round())
	s.NotEqual(first, game.RoundID())
	s.Equal(bj.PhaseStarted, game.Phase())
	s.Equal(entities.DeckSize, game.CardsRemaining())
}

// flakyRepository stores the first settlement it is given, then reports a failure
type flakyRepository struct {
	*walletRepo.MemoryRepository
	failNext bool
}

func (r *flakyRepository) SettleWallet(ctx context.Context, wallet *entities.Wallet, transactions []*entities.Transaction) error {
	if err := r.MemoryRepository.SettleWallet(ctx, wallet, transactions); err != nil {
		return err
	}
	if r.failNext {
		r.failNext = false
		return errors.New("database is locked")
	}
	return nil
}

func TestSettleRetryCreditsWalletOnce(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	repo := &flakyRepository{MemoryRepository: walletRepo.NewMemoryRepository(), failNext: true}
	service := walletService.NewService(repo, 100, clock)
	service.SetLogger(quietLogger)

	table, err := newTable(ctx, service, stackedRound(t), "alice", "bob")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	table.SetLogger(quietLogger)

	if _, err := table.PlayRound(ctx, 10, HitBelow(17)); err == nil {
		t.Fatal("expected the first settlement to fail")
	}
	if _, err := table.Settle(ctx); err != nil {
		t.Fatalf("retry settle: %v", err)
	}

	for name, want := range map[string]int64{"alice": 110, "bob": 90} {
		balance, err := service.GetBalance(ctx, name)
		if err != nil {
			t.Fatalf("balance for %s: %v", name, err)
		}
		if balance != want {
			t.Errorf("%s: wallet holds %d, want %d", name, balance, want)
		}
		ledger, err := service.GetRecentTransactions(ctx, name, 10)
		if err != nil {
			t.Fatalf("ledger for %s: %v", name, err)
		}
		if name == "alice" && len(ledger) != 2 {
			t.Errorf("alice should have one BET and one PAYOUT, got %d entries", len(ledger))
		}
	}
	if err := table.NextRound(3); err != nil {
		t.Errorf("next round after retry: %v", err)
	}
}

func TestHitBelow(t *testing.T) {
	hand := bj.NewHand()
	for _, rank := range []entities.Rank{entities.Ten, entities.Six} {
		if err := hand.AddCard(entities.NewCard(rank, entities.Clubs)); err != nil {
			t.Fatal(err)
		}
	}

	if !MimicDealer.ShouldHit(hand) {
		t.Error("16 should hit below 17")
	}
	if HitBelow(16).ShouldHit(hand) {
		t.Error("16 should stand below 16")
	}
}

// Plays several rounds against real wallets kept in memory
func TestTableWithMemoryWallets(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 7, 4, 20, 0, 0, 0, time.UTC))
	service := walletService.NewService(walletRepo.NewMemoryRepository(), 100, clock)
	service.SetLogger(quietLogger)

	table, err := NewTable(ctx, service, 5, "alice", "bob", "carol")
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	table.SetLogger(quietLogger)

	for round := 0; round < 5; round++ {
		results, err := table.PlayRound(ctx, 10, MimicDealer)
		if err != nil {
			t.Fatalf("round %d: %v", round+1, err)
		}
		for _, r := range results {
			balance, err := service.GetBalance(ctx, r.Player.Name())
			if err != nil {
				t.Fatalf("balance for %s: %v", r.Player.Name(), err)
			}
			if balance != r.Player.Balance() {
				t.Errorf("round %d: wallet for %s holds %d, table has %d", round+1, r.Player.Name(), balance, r.Player.Balance())
			}

			ledger, err := service.GetRecentTransactions(ctx, r.Player.Name(), 2)
			if err != nil {
				t.Fatalf("ledger for %s: %v", r.Player.Name(), err)
			}
			if len(ledger) == 0 || ledger[0].ReferenceID != table.Game().RoundID() {
				t.Errorf("round %d: latest ledger entry for %s should reference the round", round+1, r.Player.Name())
			}
		}
		if err := table.NextRound(int64(round + 100)); err != nil {
			t.Fatalf("next round: %v", err)
		}
	}
}
