package bracket

type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

func (s Slot) Valid() bool {
	return s == Slot1 || s == Slot2
}

type Match struct {
	ID           int `db:"id" json:"id"`
	TournamentID int `db:"tournament_id" json:"tournament_id"`

	// Position in the bracket for reconstructing the view
	RoundNumber   int  `db:"round_number" json:"round_number"`
	MatchOrder    int  `db:"match_order" json:"match_order"`
	CreationOrder int  `db:"creation_order" json:"creation_order"`
	IsLeaf        bool `db:"is_leaf" json:"is_leaf"`

	// nil means the bye sentinel
	Player1ID *int `db:"player_1_id" json:"player_1_id"`
	Player2ID *int `db:"player_2_id" json:"player_2_id"`
}

// PlayerIn returns the player occupying the given slot.
func (m *Match) PlayerIn(slot Slot) *int {
	if slot == Slot1 {
		return m.Player1ID
	}
	return m.Player2ID
}

func (m *Match) SetPlayer(slot Slot, playerID *int) {
	if slot == Slot1 {
		m.Player1ID = playerID
	} else {
		m.Player2ID = playerID
	}
}

// Edge links an internal match to the two matches feeding into it.
type Edge struct {
	ParentID     int `db:"parent_id" json:"parent_id"`
	LeftChildID  int `db:"left_child_id" json:"left_child_id"`
	RightChildID int `db:"right_child_id" json:"right_child_id"`
}

// Touches reports whether the edge names the match as parent or child.
func (e Edge) Touches(matchID int) bool {
	return e.ParentID == matchID || e.LeftChildID == matchID || e.RightChildID == matchID
}
