package game

import "time"

// Raw is one match record as delivered by the replay source, after DTO
// parsing but before timestamp repair and persistence.
type Raw struct {
	Timestamp time.Time
	A         Side
	B         Side
	Winner    int16
	Floor     int16
}

// ToGame converts the raw record into an unrated game.
func (r Raw) ToGame() *Game {
	return &Game{
		Timestamp: r.Timestamp,
		A:         r.A,
		B:         r.B,
		Winner:    r.Winner,
		Floor:     r.Floor,
	}
}
