package service

import (
	"context"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
)

// Snapshot maps every entity ID to its remaining attributes, one map per
// table. It is the structured replacement for dumping the tables as text.
type Snapshot struct {
	Tournaments map[int]TournamentRow `json:"tournaments"`
	Matches     map[int]MatchRow      `json:"matches"`
	Games       map[int]GameRow       `json:"games"`
	Players     map[int]PlayerRow     `json:"players"`
	Tree        map[int]TreeRow       `json:"tree"`
	Bye         PlayerRow             `json:"bye"`
}

type TournamentRow struct {
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	CreatedDate string `json:"created_date"`
}

type MatchRow struct {
	TournamentID  int  `json:"tournament_id"`
	Player1ID     *int `json:"player_1_id"`
	Player2ID     *int `json:"player_2_id"`
	RoundNumber   int  `json:"round_number"`
	MatchOrder    int  `json:"match_order"`
	CreationOrder int  `json:"creation_order"`
	IsLeaf        bool `json:"is_leaf"`
}

type GameRow struct {
	MatchID      int `json:"match_id"`
	Player1Score int `json:"player_1_score"`
	Player2Score int `json:"player_2_score"`
}

type PlayerRow struct {
	Name  string `json:"name"`
	Skill int    `json:"skill"`
}

type TreeRow struct {
	LeftChildID  int `json:"left_child_id"`
	RightChildID int `json:"right_child_id"`
}

// FetchAll reads every table into a Snapshot.
func (s *TournamentService) FetchAll(ctx context.Context) (*Snapshot, error) {
	s.writeMu.RLock()
	defer s.writeMu.RUnlock()

	tournaments, err := s.repo.ListTournaments(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.repo.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	games, err := s.repo.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := s.repo.ListEdges(ctx)
	if err != nil {
		return nil, err
	}

	bye := bracket.Bye()
	snap := &Snapshot{
		Tournaments: make(map[int]TournamentRow, len(tournaments)),
		Matches:     make(map[int]MatchRow, len(matches)),
		Games:       make(map[int]GameRow, len(games)),
		Players:     make(map[int]PlayerRow, len(players)),
		Tree:        make(map[int]TreeRow, len(edges)),
		Bye:         PlayerRow{Name: bye.Name, Skill: bye.Skill},
	}
	for _, t := range tournaments {
		snap.Tournaments[t.ID] = TournamentRow{
			Name:        t.Name,
			PlayerCount: t.PlayerCount,
			CreatedDate: t.CreatedDate.Format(time.DateOnly),
		}
	}
	for _, m := range matches {
		snap.Matches[m.ID] = MatchRow{
			TournamentID:  m.TournamentID,
			Player1ID:     m.Player1ID,
			Player2ID:     m.Player2ID,
			RoundNumber:   m.RoundNumber,
			MatchOrder:    m.MatchOrder,
			CreationOrder: m.CreationOrder,
			IsLeaf:        m.IsLeaf,
		}
	}
	for _, g := range games {
		snap.Games[g.ID] = GameRow{MatchID: g.MatchID, Player1Score: g.Player1Score, Player2Score: g.Player2Score}
	}
	for _, p := range players {
		if p.IsBye() {
			continue
		}
		snap.Players[*p.ID] = PlayerRow{Name: p.Name, Skill: p.Skill}
	}
	for _, e := range edges {
		snap.Tree[e.ParentID] = TreeRow{LeftChildID: e.LeftChildID, RightChildID: e.RightChildID}
	}
	return snap, nil
}
