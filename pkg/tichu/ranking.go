package tichu

// CanBeat returns true if candidate can be played on top of top.
// A nil top means the trick is empty, so anything can be led.
func CanBeat(candidate, top *Combination) bool {
	if top == nil {
		return true
	}

	if candidate.IsBomb() || top.IsBomb() {
		return bombBeats(candidate, top)
	}

	if candidate.Kind != top.Kind || candidate.Length != top.Length || len(candidate.Cards) != len(top.Cards) {
		return false
	}

	if candidate.Kind == KindSingle {
		if candidate.IsPhoenixSingle() {
			// the Phoenix is played half a rank above any single except the Dragon
			return !top.IsDragonSingle()
		}

		return candidate.ranked() > top.ranked()
	}

	return candidate.Value > top.Value
}

func bombBeats(candidate, top *Combination) bool {
	switch {
	case !top.IsBomb():
		return true
	case !candidate.IsBomb():
		return false
	case candidate.Kind != top.Kind:
		return candidate.Kind == KindStraightBomb
	case candidate.Kind == KindStraightBomb && candidate.Length != top.Length:
		return candidate.Length > top.Length
	}

	return candidate.Value > top.Value
}
