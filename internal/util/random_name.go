package util

import (
	"fmt"
	"math/rand"
	"time"
)

var adjectives = []string{
	"Fast", "Slow", "Quick", "Speedy", "Trotting", "Weaving", "Waiving", "Gracious", "Healthy", "Happy", "Funny",
	"Red", "Blue", "Green", "Orange", "Purple", "Fuzzy", "Smiling", "Tall", "Grand", "Ultimate", "Prime",
	"Jade", "Golden", "Flying", "Jumping", "Running", "Charging", "Bouncing", "Leaping",
}

var animals = []string{
	"Dog", "Cat", "Crane", "Tiger", "Phoenix", "Dragon", "Panda", "Ox", "Monkey", "Rooster", "Rabbit", "Horse",
	"Goat", "Snake", "Rat", "Boar", "Otter", "Turtle", "Koi", "Heron", "Fox", "Wolf",
}

var random = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec

// GetRandomName returns a random name by combining an adjective with an animal
// It's used for players who sit down without a name
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
