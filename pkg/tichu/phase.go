package tichu

import "encoding/json"

// Phase is the state of a round
type Phase int

// Phase constants
const (
	PhaseDealingFirst8 Phase = iota
	PhaseDealingRemaining6
	PhaseCardExchange
	PhasePlaying
	PhaseBombWindow
	PhaseRoundEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseDealingFirst8:
		return "dealing-first-8"
	case PhaseDealingRemaining6:
		return "dealing-remaining-6"
	case PhaseCardExchange:
		return "card-exchange"
	case PhasePlaying:
		return "playing"
	case PhaseBombWindow:
		return "bomb-window"
	case PhaseRoundEnd:
		return "round-end"
	}

	return ""
}

// MarshalJSON encodes JSON
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(p),
		Name: p.String(),
	})
}
