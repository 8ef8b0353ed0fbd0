package deck

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownCard is returned when a card id cannot be parsed
var ErrUnknownCard = errors.New("unknown card")

// Suit represents a card suit
type Suit string

// suit constants
const (
	Jade   Suit = "jade"
	Sword  Suit = "sword"
	Pagoda Suit = "pagoda"
	Star   Suit = "star"
)

// Suits is the canonical suit order
var Suits = []Suit{Jade, Sword, Pagoda, Star}

// Special identifies one of the four cards outside the suited ranks
type Special string

// special cards
const (
	Dog     Special = "dog"
	MahJong Special = "mahjong"
	Phoenix Special = "phoenix"
	Dragon  Special = "dragon"
)

// face cards and special ranks
const (
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14

	DogRank     = 0
	MahJongRank = 1
	DragonRank  = 15
)

// Card is an individual Tichu card. Special cards have no suit.
type Card struct {
	Rank    int     `json:"rank"`
	Suit    Suit    `json:"suit,omitempty"`
	Special Special `json:"special,omitempty"`
}

// NewCard returns a suited card
func NewCard(rank int, suit Suit) *Card {
	return &Card{Rank: rank, Suit: suit}
}

// NewSpecial returns one of the four special cards
func NewSpecial(special Special) *Card {
	rank := 0
	switch special {
	case MahJong:
		rank = MahJongRank
	case Dragon:
		rank = DragonRank
	}

	return &Card{Rank: rank, Special: special}
}

// IsSpecial returns true for the Dog, Mah Jong, Phoenix and Dragon
func (c *Card) IsSpecial() bool {
	return c.Special != ""
}

// IsNormal returns true for suited cards
func (c *Card) IsNormal() bool {
	return c.Special == "" && c.Suit != ""
}

// Is returns true if the card is the given special card
func (c *Card) Is(special Special) bool {
	return c.Special == special
}

// IsWild returns true if the card can stand in for another rank
func (c *Card) IsWild() bool {
	return c.Special == Phoenix
}

// Points returns the card's value when counting won tricks
func (c *Card) Points() int {
	switch c.Special {
	case Dragon:
		return 25
	case Phoenix:
		return -25
	case Dog, MahJong:
		return 0
	}

	switch c.Rank {
	case 5:
		return 5
	case 10, King:
		return 10
	}

	return 0
}

// order is the position of the card when a hand is sorted
func (c *Card) order() int {
	switch c.Special {
	case Dog:
		return 0
	case MahJong:
		return 1
	case Phoenix:
		return 15
	case Dragon:
		return 16
	}

	return c.Rank
}

func suitIndex(s Suit) int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}

	return len(Suits)
}

// Less orders cards by rank, then by suit
func (c *Card) Less(o *Card) bool {
	if c.order() != o.order() {
		return c.order() < o.order()
	}

	return suitIndex(c.Suit) < suitIndex(o.Suit)
}

// ID returns the identifier clients use to reference the card, e.g. "5j", "14s" or "dragon"
func (c *Card) ID() string {
	return CardToString(c)
}

func (c *Card) String() string {
	switch c.Special {
	case Dog:
		return "Dog"
	case MahJong:
		return "Mah Jong"
	case Phoenix:
		return "Phoenix"
	case Dragon:
		return "Dragon"
	}

	var rank string
	switch c.Rank {
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	case Ace:
		rank = "A"
	default:
		rank = strconv.Itoa(c.Rank)
	}

	var suit string
	switch c.Suit {
	case Jade:
		suit = "❖"
	case Sword:
		suit = "⚔"
	case Pagoda:
		suit = "⌂"
	case Star:
		suit = "★"
	default:
		panic("unknown suit")
	}

	return rank + suit
}

// Equal returns true if the cards are the same card
func (c *Card) Equal(card *Card) bool {
	return c.Special == card.Special && c.Suit == card.Suit && c.Rank == card.Rank
}

var cardRx = regexp.MustCompile(`(?i)^([2-9]|1[0-4])([jwps])\z`)

// ParseCard returns the card identified by s
func ParseCard(s string) (*Card, error) {
	switch Special(strings.ToLower(s)) {
	case Dog, MahJong, Phoenix, Dragon:
		return NewSpecial(Special(strings.ToLower(s))), nil
	}

	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}

	rank, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "j":
		suit = Jade
	case "w":
		suit = Sword
	case "p":
		suit = Pagoda
	case "s":
		suit = Star
	}

	return NewCard(rank, suit), nil
}

// CardFromString returns a Card from the string.
// The string must be either a special card name or <rank><suit> where rank >= 2 and <= 14 and suit in [jwps]
func CardFromString(s string) *Card {
	if s == "" {
		return nil
	}

	card, err := ParseCard(s)
	if err != nil {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	return card
}

// CardsFromString will returns a slice of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]*Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = CardFromString(strings.TrimSpace(card))
	}

	return cards
}

// CardToString converts a card (Ace of Stars) to a string (14s)
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	if card.IsSpecial() {
		return string(card.Special)
	}

	var suit string
	switch card.Suit {
	case Jade:
		suit = "j"
	case Sword:
		suit = "w"
	case Pagoda:
		suit = "p"
	case Star:
		suit = "s"
	}

	return fmt.Sprintf("%d%s", card.Rank, suit)
}

// CardsToString will convert a slice of cards to a string in the format of 2j,3w,dragon,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}
