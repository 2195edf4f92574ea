package entities

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/coder/quartz"
)

// DeckSize is the number of cards in a single deck
const DeckSize = 52

var (
	ErrInvalidCard   = errors.New("invalid card")
	ErrDuplicateCard = errors.New("duplicate card")
)

// Deck is a single 52-card deck drawn through a cursor. Cards are never removed;
// drawing only advances the cursor.
type Deck struct {
	cards  []Card
	cursor int
}

// NewDeck creates a new deck of 52 cards, one of each rank and suit, in standard order
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}

	return &Deck{cards: cards}
}

// NewShuffledDeck creates a deck shuffled with the given seed
func NewShuffledDeck(seed int64) *Deck {
	d := NewDeck()
	d.Shuffle(seed)
	return d
}

// StackDeck builds a deck whose first cards are top, in order, followed by the
// remaining cards in standard order.
func StackDeck(top ...Card) (*Deck, error) {
	seen := make(map[Card]bool, len(top))
	cards := make([]Card, 0, DeckSize)
	for _, c := range top {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidCard, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c] = true
		cards = append(cards, c)
	}

	for _, c := range NewDeck().cards {
		if !seen[c] {
			cards = append(cards, c)
		}
	}

	return &Deck{cards: cards}, nil
}

// Shuffle permutes all 52 cards with a Fisher-Yates shuffle driven by a
// deck-local source seeded with seed. The cursor is not moved.
func (d *Deck) Shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	for i := len(d.cards) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// ShuffleWithClock shuffles with a seed taken from the clock and returns that seed
func (d *Deck) ShuffleWithClock(clock quartz.Clock) int64 {
	seed := clock.Now().UnixNano()
	d.Shuffle(seed)
	return seed
}

// Draw returns the card at the cursor and advances it. The second result is
// false once all 52 cards have been drawn.
func (d *Deck) Draw() (Card, bool) {
	if d.IsEmpty() {
		return Card{}, false
	}
	card := d.cards[d.cursor]
	d.cursor++
	return card, true
}

// Reset rewinds the cursor without reshuffling
func (d *Deck) Reset() {
	d.cursor = 0
}

// Remaining returns the number of cards left to draw
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}

// IsEmpty reports whether every card has been drawn
func (d *Deck) IsEmpty() bool {
	return d.Remaining() == 0
}

// Cursor returns the index of the next card to draw
func (d *Deck) Cursor() int {
	return d.cursor
}

// Cards returns a copy of the full card order, drawn cards included
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
