package blackjack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fadedpez/twentyone/pkg/entities"
)

// Hand represents one actor's cards together with every total they can make.
// Aces contribute both of their values, so the total set grows with each ace held.
type Hand struct {
	cards  []entities.Card
	totals []int // ascending, no duplicates
}

// NewHand creates a new empty hand
func NewHand() *Hand {
	return &Hand{
		cards: make([]entities.Card, 0, 4),
	}
}

// AddCard adds a card to the hand and expands the total set
func (h *Hand) AddCard(card entities.Card) error {
	values := card.Values()
	if len(values) == 0 {
		return fmt.Errorf("%w: %+v", entities.ErrInvalidCard, card)
	}

	h.cards = append(h.cards, card)

	if len(h.totals) == 0 {
		h.totals = dedupe(values)
		return nil
	}

	next := make([]int, 0, len(h.totals)*len(values))
	for _, total := range h.totals {
		for _, v := range values {
			next = append(next, total+v)
		}
	}
	h.totals = dedupe(next)
	return nil
}

// Cards returns a copy of the cards in the order they were received
func (h *Hand) Cards() []entities.Card {
	out := make([]entities.Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Totals returns every achievable total in ascending order
func (h *Hand) Totals() []int {
	out := make([]int, len(h.totals))
	copy(out, h.totals)
	return out
}

// BestValue returns the highest total that does not exceed 21. When every
// total busts it returns the smallest one, and 0 for an empty hand.
func (h *Hand) BestValue() int {
	if len(h.totals) == 0 {
		return 0
	}
	for i := len(h.totals) - 1; i >= 0; i-- {
		if h.totals[i] <= BlackjackValue {
			return h.totals[i]
		}
	}
	return h.totals[0]
}

// IsBust reports whether every total exceeds 21. An empty hand is never bust.
func (h *Hand) IsBust() bool {
	return len(h.totals) > 0 && h.totals[0] > BlackjackValue
}

// IsSoft reports whether the best value relies on an ace counted as 11
func (h *Hand) IsSoft() bool {
	if h.IsBust() || len(h.totals) == 0 {
		return false
	}
	hard := 0
	for _, c := range h.cards {
		hard += c.Values()[0]
	}
	return h.BestValue() != hard
}

// Clear empties the hand
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
	h.totals = nil
}

// String returns the cards and best value, e.g. "[10♥ 8♣] (18)"
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return fmt.Sprintf("[%s] (%d)", strings.Join(parts, " "), h.BestValue())
}

func dedupe(values []int) []int {
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)

	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}
