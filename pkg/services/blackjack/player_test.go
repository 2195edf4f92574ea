package blackjack

import (
	"testing"

	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/stretchr/testify/suite"
)

type PlayerTestSuite struct {
	suite.Suite
	player *Player
}

func TestPlayerSuite(t *testing.T) {
	suite.Run(t, new(PlayerTestSuite))
}

func (s *PlayerTestSuite) SetupTest() {
	s.player = NewParticipant("A", 100)
}

func (s *PlayerTestSuite) TestNewParticipant() {
	s.Equal("A", s.player.Name())
	s.Equal(KindParticipant, s.player.Kind())
	s.False(s.player.IsDealer())
	s.Equal(int64(100), s.player.Balance())
	s.Zero(s.player.CurrentBet())
	s.NotNil(s.player.Hand())
	s.False(s.player.IsBust(), "Player with no cards should not be bust")
}

func (s *PlayerTestSuite) TestPlaceBet() {
	s.Require().NoError(s.player.PlaceBet(10))

	s.Equal(int64(90), s.player.Balance())
	s.Equal(int64(10), s.player.CurrentBet())
}

func (s *PlayerTestSuite) TestPlaceBetWholeBalance() {
	s.Require().NoError(s.player.PlaceBet(100))

	s.Zero(s.player.Balance())
	s.Equal(int64(100), s.player.CurrentBet())
}

func (s *PlayerTestSuite) TestPlaceBetRejected() {
	testCases := []struct {
		name   string
		amount int64
	}{
		{"greater than balance", 101},
		{"zero", 0},
		{"negative", -5},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			player := NewParticipant("B", 100)

			err := player.PlaceBet(tc.amount)

			s.True(types.IsGameError(err, types.ErrInvalidBet), "expected INVALID_BET, got %v", err)
			s.Equal(int64(100), player.Balance(), "Balance should be untouched")
			s.Zero(player.CurrentBet())
		})
	}
}

func (s *PlayerTestSuite) TestPlaceBetReplacesStake() {
	s.Require().NoError(s.player.PlaceBet(40))
	s.Require().NoError(s.player.PlaceBet(100), "the previous stake counts toward the new bet")

	s.Zero(s.player.Balance())
	s.Equal(int64(100), s.player.CurrentBet())

	s.Require().NoError(s.player.PlaceBet(10))
	s.Equal(int64(90), s.player.Balance())
	s.Equal(int64(10), s.player.CurrentBet())
}

func (s *PlayerTestSuite) TestSettlement() {
	testCases := []struct {
		name            string
		settle          func(p *Player) int64
		expectedCredit  int64
		expectedBalance int64
	}{
		{"lose", (*Player).LoseBet, 0, 90},
		{"return", (*Player).ReturnBet, 10, 100},
		{"payout", (*Player).Payout, 20, 110},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			player := NewParticipant("C", 100)
			s.Require().NoError(player.PlaceBet(10))

			credit := tc.settle(player)

			s.Equal(tc.expectedCredit, credit)
			s.Equal(tc.expectedBalance, player.Balance())
			s.Zero(player.CurrentBet(), "Bet should be zeroed after settlement")

			s.Zero(tc.settle(player), "settling twice should credit nothing")
			s.Equal(tc.expectedBalance, player.Balance())
		})
	}
}

func (s *PlayerTestSuite) TestDealerIgnoresMoney() {
	dealer := newDealer()

	s.True(dealer.IsDealer())
	s.Equal(DealerName, dealer.Name())
	s.NoError(dealer.PlaceBet(1_000_000), "Dealer bets are ignored")
	s.Zero(dealer.CurrentBet())
	s.Zero(dealer.Balance())
	s.Zero(dealer.Payout())
	s.Zero(dealer.ReturnBet())
	s.Zero(dealer.LoseBet())
	s.Zero(dealer.Balance())
}

func (s *PlayerTestSuite) TestDealerBusts() {
	dealer := newDealer()
	for _, rank := range []entities.Rank{entities.King, entities.Six, entities.Nine} {
		s.Require().NoError(dealer.Hand().AddCard(card(rank, entities.Clubs)))
	}

	s.True(dealer.IsBust())
}
