package tichu

// Team is a fixed partnership of two seats
type Team struct {
	Number int    `json:"number"`
	Seats  [2]int `json:"seats"`
	Score  int    `json:"score"`
}

func newTeams() [2]*Team {
	return [2]*Team{
		{Number: 0, Seats: [2]int{0, 2}},
		{Number: 1, Seats: [2]int{1, 3}},
	}
}
