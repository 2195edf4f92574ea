package blackjack

import (
	"fmt"
	"strings"

	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/logging"
	"github.com/fadedpez/twentyone/internal/types"
	"github.com/fadedpez/twentyone/pkg/entities"
	"github.com/google/uuid"
)

// Phase is the stage of the round in progress. Phases only move forward
// until StartNewRound.
type Phase string

const (
	PhaseStarted           Phase = "STARTED"
	PhaseBetPlaced         Phase = "BET_PLACED"
	PhaseInitialCardsDrawn Phase = "INITIAL_CARDS_DRAWN"
	PhasePlayerTurn        Phase = "PLAYER_TURN"
	PhaseEnd               Phase = "END"
)

// Action is the last thing a seat did this round
type Action string

const (
	ActionNone  Action = ""
	ActionHit   Action = "HIT"
	ActionStand Action = "STAND"
)

// String returns the action name, "NONE" when nothing has happened yet
func (a Action) String() string {
	if a == ActionNone {
		return "NONE"
	}
	return string(a)
}

// seat is the per-round state of one player
type seat struct {
	player *Player
	action Action
}

func (s *seat) eligible() bool {
	return s.action != ActionStand && !s.player.IsBust()
}

// Game runs rounds of single-deck blackjack for a fixed set of participants
// against one dealer. A Game is not safe for concurrent use.
type Game struct {
	deck    *entities.Deck
	seats   []*seat // participants in seating order
	dealer  *seat
	current int // seat index of the current turn, -1 before rotation starts
	phase   Phase
	round   int
	roundID string
	results []RoundResult
	logger  *logging.Logger
}

// NewGame seats players against a new dealer and shuffles the deck with a
// seed taken from the wall clock.
func NewGame(players []*Player) (*Game, error) {
	return NewGameWithClock(quartz.NewReal(), players)
}

// NewGameWithClock is NewGame with the shuffle seed taken from clock
func NewGameWithClock(clock quartz.Clock, players []*Player) (*Game, error) {
	deck := entities.NewDeck()
	seed := deck.ShuffleWithClock(clock)
	g, err := NewGameWithDeck(deck, players)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Shuffled deck with clock seed %d", seed)
	return g, nil
}

// NewSeededGame seats players and shuffles the deck with seed
func NewSeededGame(seed int64, players []*Player) (*Game, error) {
	return NewGameWithDeck(entities.NewShuffledDeck(seed), players)
}

// NewGameWithDeck seats players and deals from deck in its current order
func NewGameWithDeck(deck *entities.Deck, players []*Player) (*Game, error) {
	if deck == nil {
		return nil, types.NewGameError(types.ErrInvalidArgument, "deck is required")
	}
	if len(players) == 0 {
		return nil, types.NewGameError(types.ErrInvalidArgument, "at least one player is required")
	}
	if len(players) > MaxPlayers {
		return nil, types.Errorf(types.ErrTooManyPlayers, "at most %d players can be seated, got %d", MaxPlayers, len(players))
	}

	seats := make([]*seat, 0, len(players))
	for i, p := range players {
		if p == nil {
			return nil, types.Errorf(types.ErrInvalidArgument, "player %d is nil", i)
		}
		if p.IsDealer() {
			return nil, types.Errorf(types.ErrInvalidArgument, "player %d is a dealer", i)
		}
		for _, s := range seats {
			if s.player == p {
				return nil, types.Errorf(types.ErrInvalidArgument, "player %s is seated twice", p.Name())
			}
		}
		seats = append(seats, &seat{player: p})
	}

	return &Game{
		deck:    deck,
		seats:   seats,
		dealer:  &seat{player: newDealer()},
		current: -1,
		phase:   PhaseStarted,
		round:   1,
		roundID: uuid.New().String(),
		logger:  logging.Default,
	}, nil
}

// SetLogger replaces the logger used for round events
func (g *Game) SetLogger(logger *logging.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// PlaceBet stakes amount for p. Bets are only accepted before the deal; once
// every participant has a positive bet the round moves to BET_PLACED.
func (g *Game) PlaceBet(p *Player, amount int64) error {
	if g.phase != PhaseStarted {
		return types.NewGameError(types.ErrInvalidPhase, "bets must be placed at the start of the round")
	}
	if p != nil && p == g.dealer.player {
		return p.PlaceBet(amount)
	}

	s, err := g.seatOf(p)
	if err != nil {
		return err
	}
	if err := s.player.PlaceBet(amount); err != nil {
		return err
	}
	g.logger.Debug("Round %d: %s bet %d (balance %d)", g.round, p.Name(), amount, p.Balance())

	if g.allBetsPlaced() {
		g.phase = PhaseBetPlaced
	}
	return nil
}

func (g *Game) allBetsPlaced() bool {
	for _, s := range g.seats {
		if s.player.CurrentBet() <= 0 {
			return false
		}
	}
	return true
}

// DealInitialCards deals one card to each participant in seating order, then
// the dealer, and repeats once.
func (g *Game) DealInitialCards() error {
	if g.phase != PhaseBetPlaced {
		return types.NewGameError(types.ErrInvalidPhase, "all players must bet before dealing")
	}

	for i := 0; i < 2; i++ {
		for _, s := range g.seats {
			g.dealTo(s.player)
		}
		g.dealTo(g.dealer.player)
	}

	g.phase = PhaseInitialCardsDrawn
	g.logger.Debug("Round %d: initial cards dealt, %d cards remaining", g.round, g.deck.Remaining())
	return nil
}

// dealTo draws one card into p's hand. An exhausted deck deals nothing.
func (g *Game) dealTo(p *Player) {
	card, ok := g.deck.Draw()
	if !ok {
		g.logger.Warn("Round %d: deck exhausted, no card for %s", g.round, p.Name())
		return
	}
	if err := p.hand.AddCard(card); err != nil {
		g.logger.Error("Round %d: could not add %v to %s: %v", g.round, card, p.Name(), err)
	}
}

// NextEligiblePlayer returns whose turn it is. The current player keeps the
// turn while they have neither stood nor bust; otherwise the turn passes to
// the next eligible participant in seating order, and to the dealer once no
// participant is eligible.
func (g *Game) NextEligiblePlayer() *Player {
	if g.current >= 0 && g.seats[g.current].eligible() {
		return g.seats[g.current].player
	}

	start := 0
	if g.current >= 0 {
		start = g.current + 1
	}
	for i := start; i < len(g.seats); i++ {
		if g.seats[i].eligible() {
			g.current = i
			return g.seats[i].player
		}
	}

	return g.dealer.player
}

// CurrentTurnPlayer returns the participant holding the turn, or nil before
// rotation has started
func (g *Game) CurrentTurnPlayer() *Player {
	if g.current < 0 {
		return nil
	}
	return g.seats[g.current].player
}

// Hit draws one more card for p
func (g *Game) Hit(p *Player) error {
	if err := g.requirePlay(); err != nil {
		return err
	}
	if p != nil && p == g.dealer.player {
		return types.NewGameError(types.ErrInvalidAction, "the dealer draws during the dealer turn")
	}
	s, err := g.seatOf(p)
	if err != nil {
		return err
	}
	if s.action == ActionStand {
		return types.Errorf(types.ErrInvalidAction, "%s has already stood", p.Name())
	}
	if p.IsBust() {
		return types.Errorf(types.ErrInvalidAction, "%s is already bust", p.Name())
	}

	g.phase = PhasePlayerTurn
	g.dealTo(p)
	s.action = ActionHit
	g.logger.Debug("Round %d: %s hits, hand %s", g.round, p.Name(), p.hand)
	return nil
}

// Stand ends p's turn and settles the round if everyone is done
func (g *Game) Stand(p *Player) error {
	if err := g.requirePlay(); err != nil {
		return err
	}
	if p != nil && p == g.dealer.player {
		return types.NewGameError(types.ErrInvalidAction, "the dealer stands through DealerTurn")
	}
	s, err := g.seatOf(p)
	if err != nil {
		return err
	}

	g.phase = PhasePlayerTurn
	s.action = ActionStand
	g.logger.Debug("Round %d: %s stands on %d", g.round, p.Name(), p.hand.BestValue())
	g.checkRoundEnd()
	return nil
}

// DealerTurn draws for the dealer while the best value is below 17, then
// stands and settles the round if every participant is done. A soft 17 stands.
func (g *Game) DealerTurn() error {
	if err := g.requirePlay(); err != nil {
		return err
	}

	g.phase = PhasePlayerTurn
	dealer := g.dealer.player
	for DealerShouldDraw(dealer.hand.BestValue()) {
		if g.deck.IsEmpty() {
			g.logger.Warn("Round %d: deck exhausted during dealer turn at %d", g.round, dealer.hand.BestValue())
			break
		}
		g.dealTo(dealer)
	}
	g.dealer.action = ActionStand
	g.logger.Debug("Round %d: dealer stands, hand %s", g.round, dealer.hand)

	g.checkRoundEnd()
	return nil
}

func (g *Game) requirePlay() error {
	switch g.phase {
	case PhaseInitialCardsDrawn, PhasePlayerTurn:
		return nil
	case PhaseEnd:
		return types.NewGameError(types.ErrGameAlreadyEnded, "round is over, start a new round")
	}
	return types.Errorf(types.ErrInvalidPhase, "cards have not been dealt (phase %s)", g.phase)
}

// StartNewRound clears hands and turn state and rewinds the deck without
// reshuffling. Players and balances are kept; a bet from an unfinished round
// is returned to its owner.
func (g *Game) StartNewRound() {
	if g.phase != PhaseEnd {
		for _, s := range g.seats {
			if refund := s.player.ReturnBet(); refund > 0 {
				g.logger.Info("Round %d abandoned: returned %d to %s", g.round, refund, s.player.Name())
			}
		}
	}

	g.deck.Reset()
	for _, s := range g.allSeats() {
		s.player.hand.Clear()
		s.action = ActionNone
	}
	g.current = -1
	g.results = nil
	g.phase = PhaseStarted
	g.round++
	g.roundID = uuid.New().String()
}

// Reshuffle reshuffles the full deck with seed. Only allowed before bets.
func (g *Game) Reshuffle(seed int64) error {
	if g.phase != PhaseStarted {
		return types.NewGameError(types.ErrInvalidPhase, "the deck can only be shuffled before betting")
	}
	g.deck.Shuffle(seed)
	g.deck.Reset()
	return nil
}

// seatOf finds p's seat by seating order
func (g *Game) seatOf(p *Player) (*seat, error) {
	if p == nil {
		return nil, types.NewGameError(types.ErrPlayerNotFound, "player is nil")
	}
	for _, s := range g.seats {
		if s.player == p {
			return s, nil
		}
	}
	return nil, types.Errorf(types.ErrPlayerNotFound, "%s is not seated at this game", p.Name())
}

// allSeats returns the participant seats followed by the dealer's
func (g *Game) allSeats() []*seat {
	out := make([]*seat, 0, len(g.seats)+1)
	out = append(out, g.seats...)
	return append(out, g.dealer)
}

// ActionOf returns the last action p took this round
func (g *Game) ActionOf(p *Player) (Action, error) {
	if p != nil && p == g.dealer.player {
		return g.dealer.action, nil
	}
	s, err := g.seatOf(p)
	if err != nil {
		return ActionNone, err
	}
	return s.action, nil
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) Dealer() *Player {
	return g.dealer.player
}

// Players returns the participants in seating order
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.seats))
	for i, s := range g.seats {
		out[i] = s.player
	}
	return out
}

// Round returns the 1-based round number
func (g *Game) Round() int {
	return g.round
}

// RoundID uniquely identifies the round in progress
func (g *Game) RoundID() string {
	return g.roundID
}

// CardsRemaining returns how many cards are left in the deck
func (g *Game) CardsRemaining() int {
	return g.deck.Remaining()
}

// StateSummary renders one line per participant and a final line for the
// dealer: name, hand and last action.
func (g *Game) StateSummary() string {
	var sb strings.Builder
	for _, s := range g.allSeats() {
		fmt.Fprintf(&sb, "%s: %s, %s\n", s.player.Name(), s.player.hand, s.action)
	}
	return sb.String()
}
