package bracket

import "time"

type Tournament struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	PlayerCount int       `db:"player_count" json:"player_count"`
	CreatedDate time.Time `db:"created_date" json:"created_date"`
}

// EvenPlayerCount rounds an odd count up so the extra slot can hold a bye.
func EvenPlayerCount(count int) int {
	if count%2 != 0 {
		return count + 1
	}
	return count
}
