package bracket

import "fmt"

// GamesPerMatch is the size of the best-of-7 slot every match owns.
const GamesPerMatch = 7

type Game struct {
	ID           int `db:"id" json:"id"`
	MatchID      int `db:"match_id" json:"match_id"`
	Player1Score int `db:"player_1_score" json:"player_1_score"`
	Player2Score int `db:"player_2_score" json:"player_2_score"`
}

// Adjust moves one player's score by a single point. Going below zero is a no-op.
func (g *Game) Adjust(slot Slot, delta int) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", ErrInvalidArgument, slot)
	}
	if delta != 1 && delta != -1 {
		return fmt.Errorf("%w: score delta must be +1 or -1, got %d", ErrInvalidArgument, delta)
	}

	score := &g.Player1Score
	if slot == Slot2 {
		score = &g.Player2Score
	}
	if *score+delta < 0 {
		return nil
	}
	*score += delta
	return nil
}
