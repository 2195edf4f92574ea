package blackjack

import (
	"github.com/fadedpez/twentyone/internal/types"
)

// DealerName is the display name of the house
const DealerName = "Dealer"

// Kind distinguishes participants from the dealer
type Kind int

const (
	KindParticipant Kind = iota
	KindDealer
)

// String returns the string representation of the kind
func (k Kind) String() string {
	if k == KindDealer {
		return "DEALER"
	}
	return "PARTICIPANT"
}

// Player is a seat at the table. Participants carry a balance and a bet; the
// dealer plays a hand but ignores betting and settlement.
type Player struct {
	name    string
	kind    Kind
	hand    *Hand
	balance int64
	bet     int64
}

// NewParticipant creates a betting player with a starting balance
func NewParticipant(name string, balance int64) *Player {
	return &Player{
		name:    name,
		kind:    KindParticipant,
		hand:    NewHand(),
		balance: balance,
	}
}

func newDealer() *Player {
	return &Player{
		name: DealerName,
		kind: KindDealer,
		hand: NewHand(),
	}
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Kind() Kind {
	return p.kind
}

func (p *Player) IsDealer() bool {
	return p.kind == KindDealer
}

func (p *Player) Hand() *Hand {
	return p.hand
}

// Balance returns the chips not currently staked. Always 0 for the dealer.
func (p *Player) Balance() int64 {
	return p.balance
}

// CurrentBet returns the stake for the round in progress. Always 0 for the dealer.
func (p *Player) CurrentBet() int64 {
	return p.bet
}

// IsBust reports whether every total of the player's hand exceeds 21
func (p *Player) IsBust() bool {
	return p.hand.IsBust()
}

// PlaceBet moves amount from the balance into the current bet. A bet that is
// already staked is returned to the balance first.
func (p *Player) PlaceBet(amount int64) error {
	switch p.kind {
	case KindDealer:
		return nil
	case KindParticipant:
		if amount <= 0 {
			return types.Errorf(types.ErrInvalidBet, "bet must be positive, got %d", amount)
		}
		if amount > p.balance+p.bet {
			return types.Errorf(types.ErrInvalidBet, "bet %d is greater than balance %d", amount, p.balance+p.bet)
		}
		p.balance += p.bet
		p.bet = amount
		p.balance -= amount
		return nil
	}
	return types.Errorf(types.ErrInternalError, "unknown player kind %d", p.kind)
}

// LoseBet forfeits the current bet. It returns the amount credited, always 0.
func (p *Player) LoseBet() int64 {
	if p.kind == KindDealer {
		return 0
	}
	p.bet = 0
	return 0
}

// ReturnBet credits the current bet back to the balance and returns it
func (p *Player) ReturnBet() int64 {
	if p.kind == KindDealer {
		return 0
	}
	credit := p.bet
	p.balance += credit
	p.bet = 0
	return credit
}

// Payout credits the bet plus equal winnings and returns the amount credited
func (p *Player) Payout() int64 {
	if p.kind == KindDealer {
		return 0
	}
	credit := p.bet * PayoutMultiplier
	p.balance += credit
	p.bet = 0
	return credit
}
