package blackjack

import (
	bj "github.com/fadedpez/twentyone/pkg/services/blackjack"
)

// Policy decides whether an automatically played participant takes a card
type Policy interface {
	ShouldHit(hand *bj.Hand) bool
}

// HitBelow hits while the hand's best value is below the threshold
type HitBelow int

// ShouldHit implements Policy
func (h HitBelow) ShouldHit(hand *bj.Hand) bool {
	return !hand.IsBust() && hand.BestValue() < int(h)
}

// MimicDealer plays a participant by the dealer's rule
var MimicDealer Policy = HitBelow(bj.DealerStandValue)
