package blackjack

// RoundResult records how one participant's bet was settled
type RoundResult struct {
	Player      *Player
	Result      Result
	Value       int   // participant's best value
	DealerValue int   // dealer's best value
	Bust        bool  // participant bust
	Stake       int64 // bet at settlement time
	Credit      int64 // amount credited back to the balance
}

// Net returns the change in the participant's wealth for the round
func (r RoundResult) Net() int64 {
	return r.Credit - r.Stake
}

// checkRoundEnd settles the round once every participant has stood or bust
// and the dealer has stood. It settles at most once per round.
func (g *Game) checkRoundEnd() bool {
	if g.phase == PhaseEnd {
		return false
	}
	for _, s := range g.seats {
		if s.action != ActionStand && !s.player.IsBust() {
			return false
		}
	}
	if g.dealer.action != ActionStand {
		return false
	}

	g.settle()
	return true
}

func (g *Game) settle() {
	dealer := g.dealer.player
	dealerValue := dealer.hand.BestValue()
	dealerBust := dealer.IsBust()

	results := make([]RoundResult, 0, len(g.seats))
	for _, s := range g.seats {
		p := s.player
		r := RoundResult{
			Player:      p,
			Value:       p.hand.BestValue(),
			DealerValue: dealerValue,
			Bust:        p.IsBust(),
			Stake:       p.CurrentBet(),
		}

		if r.Bust {
			r.Result = ResultLose
		} else {
			r.Result = Compare(r.Value, dealerValue, dealerBust)
		}

		switch r.Result {
		case ResultWin:
			r.Credit = p.Payout()
		case ResultPush:
			r.Credit = p.ReturnBet()
		default:
			r.Credit = p.LoseBet()
		}

		g.logger.Debug("Round %d: %s %s with %d against dealer %d, bet %d, credited %d",
			g.round, p.Name(), r.Result, r.Value, dealerValue, r.Stake, r.Credit)
		results = append(results, r)
	}

	g.results = results
	g.phase = PhaseEnd
	g.logger.Info("Round %d settled: dealer %d (bust %v), %d participants", g.round, dealerValue, dealerBust, len(results))
}

// Results returns the settlement of the round, in seating order. It is empty
// until the round has ended.
func (g *Game) Results() []RoundResult {
	out := make([]RoundResult, len(g.results))
	copy(out, g.results)
	return out
}

// ResultFor returns the settlement for p, if the round has ended
func (g *Game) ResultFor(p *Player) (RoundResult, bool) {
	for _, r := range g.results {
		if r.Player == p {
			return r, true
		}
	}
	return RoundResult{}, false
}
