package tichu

import (
	"encoding/json"
	"sort"

	"tichu-server/pkg/deck"
)

// Kind is the type of a combination
type Kind int

// Kind constants
const (
	KindSingle Kind = iota + 1
	KindPair
	KindTriple
	KindFullHouse
	KindStraight
	KindPairSequence
	KindFourBomb
	KindStraightBomb
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "SINGLE"
	case KindPair:
		return "PAIR"
	case KindTriple:
		return "TRIPLE"
	case KindFullHouse:
		return "FULL_HOUSE"
	case KindStraight:
		return "STRAIGHT"
	case KindPairSequence:
		return "PAIR_SEQUENCE"
	case KindFourBomb:
		return "BOMB_4"
	case KindStraightBomb:
		return "BOMB_STRAIGHT"
	}

	return ""
}

// MarshalJSON encodes JSON
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(k),
		Name: k.String(),
	})
}

// IsBomb returns true for four of a kind and straight flush bombs
func (k Kind) IsBomb() bool {
	return k == KindFourBomb || k == KindStraightBomb
}

// Combination is a legal set of cards that can be played to a trick
type Combination struct {
	Kind Kind
	// Value is the comparison rank. For sequences it's the lowest rank, for a full house
	// it's the rank of the triple.
	Value int
	// Length is the card count for straights and straight bombs, and the pair count
	// for pair sequences. Other kinds use the card count.
	Length int
	Cards  deck.Hand

	// a Phoenix single ranks half a step above Value
	half bool
}

// IsBomb returns true if the combination is a bomb
func (c *Combination) IsBomb() bool {
	return c.Kind.IsBomb()
}

// IsPhoenixSingle returns true if the combination is the Phoenix played alone
func (c *Combination) IsPhoenixSingle() bool {
	return c.Kind == KindSingle && c.Cards[0].Is(deck.Phoenix)
}

// IsDragonSingle returns true if the combination is the Dragon played alone
func (c *Combination) IsDragonSingle() bool {
	return c.Kind == KindSingle && c.Cards[0].Is(deck.Dragon)
}

// Rank returns the comparison rank. A Phoenix single is Value + 0.5
func (c *Combination) Rank() float64 {
	if c.half {
		return float64(c.Value) + 0.5
	}

	return float64(c.Value)
}

// ranked is Rank() doubled so comparisons stay in integers
func (c *Combination) ranked() int {
	if c.half {
		return c.Value*2 + 1
	}

	return c.Value * 2
}

// over returns a Phoenix single resolved against the combination it is played on
func (c *Combination) over(top *Combination) *Combination {
	if !c.IsPhoenixSingle() {
		return c
	}

	resolved := *c
	resolved.half = true
	resolved.Value = 1
	if top != nil {
		resolved.Value = top.Value
	}

	return &resolved
}

func (c *Combination) String() string {
	return c.Kind.String() + " " + c.Cards.String()
}

// MarshalJSON encodes JSON
func (c *Combination) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   Kind         `json:"kind"`
		Value  float64      `json:"value"`
		Length int          `json:"length"`
		Cards  []*deck.Card `json:"cards"`
	}{
		Kind:   c.Kind,
		Value:  c.Rank(),
		Length: c.Length,
		Cards:  c.Cards,
	})
}

// cardGroups summarizes the cards handed to Detect
type cardGroups struct {
	normals []*deck.Card
	counts  map[int]int
	ranks   []int // distinct normal ranks, ascending
	suits   map[deck.Suit]bool
	phoenix bool
	mahJong bool
	dog     bool
	dragon  bool
}

func groupCards(cards []*deck.Card) (*cardGroups, error) {
	g := &cardGroups{
		counts: make(map[int]int),
		suits:  make(map[deck.Suit]bool),
	}

	seen := make(map[string]bool)
	for _, card := range cards {
		if seen[card.ID()] {
			return nil, ErrDuplicateCard
		}
		seen[card.ID()] = true

		switch card.Special {
		case deck.Phoenix:
			g.phoenix = true
		case deck.MahJong:
			g.mahJong = true
		case deck.Dog:
			g.dog = true
		case deck.Dragon:
			g.dragon = true
		default:
			g.normals = append(g.normals, card)
			if g.counts[card.Rank] == 0 {
				g.ranks = append(g.ranks, card.Rank)
			}
			g.counts[card.Rank]++
			g.suits[card.Suit] = true
		}
	}

	sort.Ints(g.ranks)
	return g, nil
}

func (g *cardGroups) hasSpecials() bool {
	return g.phoenix || g.mahJong || g.dog || g.dragon
}

// consecutive returns true if the distinct normal ranks form an unbroken run
func (g *cardGroups) consecutive() bool {
	for i := 1; i < len(g.ranks); i++ {
		if g.ranks[i] != g.ranks[i-1]+1 {
			return false
		}
	}

	return true
}

// Detect classifies the cards as a combination. The order of the cards does not matter.
// Bombs are recognized before any other kind.
func Detect(cards []*deck.Card) (*Combination, error) {
	n := len(cards)
	if n == 0 {
		return nil, ErrNoCards
	}

	g, err := groupCards(cards)
	if err != nil {
		return nil, err
	}

	sorted := deck.Hand(cards).Clone()
	sorted.Sort()

	combo := &Combination{Cards: sorted, Length: n}
	ok := false
	switch {
	case n == 1:
		ok = g.single(combo, cards[0])
	case g.dog || g.dragon:
		// only ever played alone
	case g.fourBomb(combo, n), g.straightBomb(combo, n):
		ok = true
	case n == 2:
		ok = g.ofAKind(combo, 2, KindPair)
	case n == 3:
		ok = g.ofAKind(combo, 3, KindTriple)
	default:
		ok = (n == 5 && g.fullHouse(combo)) || g.straight(combo, n) || g.pairSequence(combo, n)
	}

	if !ok {
		return nil, ErrNotACombination
	}

	return combo, nil
}

func (g *cardGroups) single(combo *Combination, card *deck.Card) bool {
	combo.Kind = KindSingle
	switch card.Special {
	case deck.Dog:
		return false
	case deck.Phoenix:
		combo.Value = deck.MahJongRank
		combo.half = true
	default:
		combo.Value = card.Rank
	}

	return true
}

func (g *cardGroups) fourBomb(combo *Combination, n int) bool {
	if n != 4 || g.hasSpecials() || len(g.ranks) != 1 {
		return false
	}

	combo.Kind = KindFourBomb
	combo.Value = g.ranks[0]
	return true
}

func (g *cardGroups) straightBomb(combo *Combination, n int) bool {
	if n < 5 || g.hasSpecials() || len(g.suits) != 1 || len(g.ranks) != n || !g.consecutive() {
		return false
	}

	combo.Kind = KindStraightBomb
	combo.Value = g.ranks[0]
	return true
}

// ofAKind handles pairs and triples, where the Phoenix may stand in for one card
func (g *cardGroups) ofAKind(combo *Combination, n int, kind Kind) bool {
	if g.mahJong || len(g.ranks) != 1 {
		return false
	}

	if g.counts[g.ranks[0]]+boolToInt(g.phoenix) != n {
		return false
	}

	combo.Kind = kind
	combo.Value = g.ranks[0]
	return true
}

func (g *cardGroups) fullHouse(combo *Combination) bool {
	if g.mahJong || len(g.ranks) != 2 {
		return false
	}

	low, high := g.ranks[0], g.ranks[1]
	lowCount, highCount := g.counts[low], g.counts[high]

	value := 0
	switch {
	case g.phoenix && lowCount == 2 && highCount == 2:
		// the Phoenix joins the higher pair
		value = high
	case lowCount == 3 && highCount == 2-boolToInt(g.phoenix):
		value = low
	case highCount == 3 && lowCount == 2-boolToInt(g.phoenix):
		value = high
	default:
		return false
	}

	combo.Kind = KindFullHouse
	combo.Value = value
	return true
}

// straight requires five or more distinct consecutive ranks. The Mah Jong counts as a 1.
// The Phoenix cannot be used in a straight.
func (g *cardGroups) straight(combo *Combination, n int) bool {
	if n < 5 || g.phoenix {
		return false
	}

	ranks := g.ranks
	if g.mahJong {
		ranks = append([]int{deck.MahJongRank}, g.ranks...)
	}

	if len(ranks) != n {
		return false
	}

	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}

	combo.Kind = KindStraight
	combo.Value = ranks[0]
	return true
}

// pairSequence requires two or more pairs of consecutive ranks. The Phoenix may complete
// one pair, but never adds a third card to a rank.
func (g *cardGroups) pairSequence(combo *Combination, n int) bool {
	if n < 4 || n%2 != 0 || g.mahJong {
		return false
	}

	singles := 0
	for _, rank := range g.ranks {
		switch g.counts[rank] {
		case 1:
			singles++
		case 2:
		default:
			return false
		}
	}

	if singles != boolToInt(g.phoenix) || len(g.ranks) != n/2 || !g.consecutive() {
		return false
	}

	combo.Kind = KindPairSequence
	combo.Value = g.ranks[0]
	combo.Length = n / 2
	return true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
