package blackjack

const (
	BlackjackValue   = 21 // Highest total before a hand busts
	DealerStandValue = 17 // Dealer draws while below this, soft or hard
	MaxPlayers       = 7  // Max number of participants seated at one game
	PayoutMultiplier = 2  // A win returns the bet plus an equal amount
)

// Result represents the outcome of a participant's hand
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLose Result = "LOSE"
	ResultPush Result = "PUSH"
)

// String returns the string representation of the result
func (r Result) String() string {
	return string(r)
}

// IsWin returns true if this result represents a win
func (r Result) IsWin() bool {
	return r == ResultWin
}

// Compare decides a non-bust participant's result against the dealer
func Compare(playerValue, dealerValue int, dealerBust bool) Result {
	switch {
	case dealerBust || playerValue > dealerValue:
		return ResultWin
	case playerValue == dealerValue:
		return ResultPush
	default:
		return ResultLose
	}
}

// DealerShouldDraw reports whether the dealer takes another card at value
func DealerShouldDraw(value int) bool {
	return value < DealerStandValue
}
