package bracket

// ByeName is the display name of the bye sentinel.
const ByeName = "N/A"

// Player is a competitor. A nil ID is the bye sentinel: it always exists,
// is never stored as a row and cannot be deleted.
type Player struct {
	ID    *int   `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Skill int    `db:"skill" json:"skill"`
}

// Bye returns the sentinel player used to fill empty slots.
func Bye() Player {
	return Player{Name: ByeName}
}

func (p Player) IsBye() bool {
	return p.ID == nil
}
