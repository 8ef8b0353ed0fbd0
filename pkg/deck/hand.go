package deck

import (
	"sort"
)

// Hand represents a collection of cards
type Hand []*Card

func (h Hand) Len() int {
	return len(h)
}

func (h Hand) Less(i, j int) bool {
	return h[i].Less(h[j])
}

func (h Hand) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Sort sorts the hand from lowest to highest
func (h Hand) Sort() {
	sort.Sort(h)
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// AddCards adds the cards to the hand
func (h *Hand) AddCards(cards []*Card) {
	*h = append(*h, cards...)
}

// HasCard returns true if the hand contains the specified card
func (h Hand) HasCard(card *Card) bool {
	return h.Find(card.ID()) != nil
}

// Find returns the card with the given id, or nil
func (h Hand) Find(id string) *Card {
	for _, c := range h {
		if c.ID() == id {
			return c
		}
	}

	return nil
}

// Discard will discard the specified card and returns the number of cards removed
func (h *Hand) Discard(card *Card) int {
	count := 0
	newHand := make([]*Card, 0, len(*h))
	for _, c := range *h {
		if c.Equal(card) {
			count++
		} else {
			newHand = append(newHand, c)
		}
	}

	*h = newHand
	return count
}

// Remove discards each of the cards. It returns false and leaves the hand untouched
// if any card is missing.
func (h *Hand) Remove(cards []*Card) bool {
	for _, card := range cards {
		if !h.HasCard(card) {
			return false
		}
	}

	for _, card := range cards {
		h.Discard(card)
	}

	return true
}

// Points returns the sum of the card points
func (h Hand) Points() int {
	points := 0
	for _, c := range h {
		points += c.Points()
	}

	return points
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
