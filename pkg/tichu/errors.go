package tichu

import (
	"errors"
	"fmt"
)

// Rule violations fall into three kinds. Callers should test for the kind with errors.Is.
var (
	// ErrIllegalAction is returned for an action that is not allowed in the current state
	ErrIllegalAction = errors.New("illegal action")

	// ErrIllegalCombination is returned for cards that do not form a legal combination,
	// or that do not beat the combination on top of the trick
	ErrIllegalCombination = errors.New("illegal combination")

	// ErrInvariantViolation means the engine detected an inconsistent state
	ErrInvariantViolation = errors.New("invariant violation")
)

type ruleError struct {
	kind error
	msg  string
}

func (r *ruleError) Error() string {
	return r.msg
}

func (r *ruleError) Unwrap() error {
	return r.kind
}

func illegalAction(msg string) error {
	return &ruleError{kind: ErrIllegalAction, msg: msg}
}

func illegalCombination(msg string) error {
	return &ruleError{kind: ErrIllegalCombination, msg: msg}
}

func invariantViolation(format string, a ...interface{}) error {
	return &ruleError{kind: ErrInvariantViolation, msg: fmt.Sprintf(format, a...)}
}

// ErrUnknownAction is returned for an action name the game does not understand
var ErrUnknownAction = illegalAction("unknown action")

// ErrUnknownPlayer is returned when the player is not seated in the game
var ErrUnknownPlayer = illegalAction("player is not in this game")

// ErrNotPlayersTurn is returned when it's not the player's turn
var ErrNotPlayersTurn = illegalAction("it is not your turn")

// ErrWrongPhase is returned when the action cannot be performed in the current phase of the round
var ErrWrongPhase = illegalAction("action is not allowed right now")

// ErrCardNotInHand is returned when the player tries to use a card they don't have
var ErrCardNotInHand = illegalAction("card is not in your hand")

// ErrDuplicateCard is returned when the same card is submitted twice
var ErrDuplicateCard = illegalAction("the same card cannot be used twice")

// ErrAlreadyBid is returned when a player has already made a decision on the bid
var ErrAlreadyBid = illegalAction("you have already bid")

// ErrExchangeCardCount is returned when the player does not pass exactly three cards
var ErrExchangeCardCount = illegalAction("you must pass exactly three cards")

// ErrAlreadyExchanged is returned when a player submits their exchange twice
var ErrAlreadyExchanged = illegalAction("you have already passed your cards")

// ErrCannotPassLead is returned when the lead player tries to pass
var ErrCannotPassLead = illegalAction("you cannot pass on the lead")

// ErrBombWindowOpen is returned when a normal play is attempted before the bomb window closes
var ErrBombWindowOpen = illegalAction("waiting for the bomb window to close")

// ErrBombWindowClosed is returned when a bomb is played out of turn and does not beat the current trick
var ErrBombWindowClosed = illegalAction("window closed, combination does not currently beat the top of stack")

// ErrNotABomb is returned when a non-bomb combination is played as a bomb
var ErrNotABomb = illegalAction("combination is not a bomb")

// ErrDogNotLead is returned when the Dog is played on top of another combination
var ErrDogNotLead = illegalAction("the Dog can only be played as a lead")

// ErrPlayerIsOut is returned when a player without cards tries to act
var ErrPlayerIsOut = illegalAction("you have no cards left")

// ErrWishNotAllowed is returned when a player declares a wish without having just played the Mah Jong
var ErrWishNotAllowed = illegalAction("a wish can only be made right after playing the Mah Jong")

// ErrInvalidWish is returned when the wished rank is not 2 through Ace
var ErrInvalidWish = illegalAction("wish must be a rank between 2 and Ace")

// ErrGameIsOver is returned when an action is attempted on a finished match
var ErrGameIsOver = illegalAction("game is over")

// ErrGameClosed is returned after Close() is called
var ErrGameClosed = illegalAction("game has been closed")

// ErrNoCards is returned when no cards are submitted
var ErrNoCards = illegalCombination("no cards were played")

// ErrNotACombination is returned when the cards do not form any combination
var ErrNotACombination = illegalCombination("cards do not form a valid combination")

// ErrDoesNotBeat is returned when a combination does not beat the top combination of the trick
var ErrDoesNotBeat = illegalCombination("combination does not beat the current trick")

// ErrRoundFaulted is returned for every action after an invariant violation was detected in the round
var ErrRoundFaulted = &ruleError{kind: ErrInvariantViolation, msg: "round is in a faulted state"}

// PlayerCountError is an error on the number of players in the game
type PlayerCountError int

func (p PlayerCountError) Error() string {
	return fmt.Sprintf("expected %d players, got %d", playerCount, p)
}

// Is allows PlayerCountError to be matched as an illegal action
func (p PlayerCountError) Is(target error) bool {
	return target == ErrIllegalAction
}
