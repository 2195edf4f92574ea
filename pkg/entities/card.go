package entities

import (
	"fmt"
	"strconv"
)

// Suit represents a card suit
type Suit string

const (
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
	Spades   Suit = "SPADES"
)

// Suits lists every suit in deck order
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Symbol returns the single-rune symbol for the suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	}
	return "?"
}

// Rank represents a card rank
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists every rank in deck order
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Values returns the legal numeric values of the rank. Aces count as 1 or 11,
// face cards as 10. An unknown rank has no values.
func (r Rank) Values() []int {
	switch r {
	case Ace:
		return []int{1, 11}
	case Jack, Queen, King:
		return []int{10}
	}
	n, err := strconv.Atoi(string(r))
	if err != nil || n < 2 || n > 10 {
		return nil
	}
	return []int{n}
}

// Card represents a playing card

type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card

func NewCard(rank Rank, suit Suit) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// Values returns the legal numeric values of the card
func (c Card) Values() []int {
	return c.Rank.Values()
}

// IsValid reports whether both rank and suit are known
func (c Card) IsValid() bool {
	return len(c.Rank.Values()) > 0 && c.Suit.Symbol() != "?"
}

// String returns the string representation of the card

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}
