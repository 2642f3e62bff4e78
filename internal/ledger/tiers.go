package ledger

import (
	"StableLottery/internal/model"
)

// PrizeTier pays ShareBps of the distributable pool to a ticket with
// Matches positional matches.
type PrizeTier struct {
	Matches  int
	ShareBps uint64
	Label    string
}

// PrizeTiers is ordered from best to worst. Fewer than three matches pays
// nothing.
var PrizeTiers = []PrizeTier{
	{Matches: 6, ShareBps: 5000, Label: "jackpot"},
	{Matches: 5, ShareBps: 1500, Label: "second"},
	{Matches: 4, ShareBps: 500, Label: "third"},
	{Matches: 3, ShareBps: 100, Label: "fourth"},
}

// CountMatches counts slots where the ticket equals the winning number at
// the same position.
func CountMatches(ticket, winning model.Numbers) int {
	n := 0
	for i := range ticket {
		if ticket[i] == winning[i] {
			n++
		}
	}
	return n
}

// TierFor returns the tier for a match count, or false when it pays nothing.
func TierFor(matches int) (PrizeTier, bool) {
	for _, t := range PrizeTiers {
		if t.Matches == matches {
			return t, true
		}
	}
	return PrizeTier{}, false
}
