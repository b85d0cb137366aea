package store

import (
	"context"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
)

// Writer is the part of a Repository usable inside an atomic unit.
type Writer interface {
	SaveTournament(ctx context.Context, tournament *bracket.Tournament) error
	SaveMatches(ctx context.Context, matches []bracket.Match) error
	SaveGames(ctx context.Context, games []bracket.Game) error
	SaveEdges(ctx context.Context, edges []bracket.Edge) error
	GetTournament(ctx context.Context, id int) (*bracket.Tournament, error)
	ListLiveMatchIDs(ctx context.Context) ([]int, error)
	ListLiveGameIDs(ctx context.Context) ([]int, error)
}

// Repository persists brackets. Every method is atomic on its own; Atomic
// groups several writes so that either all of them become visible or none.
type Repository interface {
	Writer

	Atomic(ctx context.Context, fn func(w Writer) error) error

	ListTournaments(ctx context.Context) ([]bracket.Tournament, error)
	RenameTournament(ctx context.Context, id int, name string) error
	// DeleteTournamentCascade removes the tournament, its matches, their
	// games and every edge touching those matches.
	DeleteTournamentCascade(ctx context.Context, id int) error

	GetMatch(ctx context.Context, id int) (*bracket.Match, error)
	GetMatchChildren(ctx context.Context, matchID int) (*bracket.Edge, error)
	GetMatchesOfTournament(ctx context.Context, tournamentID int) ([]bracket.Match, error)
	// ListEdgesOfTournament returns the tournament's edges ordered by the
	// creation order of their parent match.
	ListEdgesOfTournament(ctx context.Context, tournamentID int) ([]bracket.Edge, error)
	SetMatchPlayer(ctx context.Context, matchID int, slot bracket.Slot, playerID *int) error

	GetGame(ctx context.Context, id int) (*bracket.Game, error)
	GetGamesOfMatch(ctx context.Context, matchID int) ([]bracket.Game, error)
	AdjustGameScore(ctx context.Context, gameID int, slot bracket.Slot, delta int) (*bracket.Game, error)

	SavePlayer(ctx context.Context, player *bracket.Player) error
	UpdatePlayer(ctx context.Context, player *bracket.Player) error
	DeletePlayer(ctx context.Context, id int) error
	GetPlayer(ctx context.Context, id int) (*bracket.Player, error)
	ListPlayers(ctx context.Context) ([]bracket.Player, error)

	ListMatches(ctx context.Context) ([]bracket.Match, error)
	ListGames(ctx context.Context) ([]bracket.Game, error)
	ListEdges(ctx context.Context) ([]bracket.Edge, error)
}

var (
	_ Repository = (*SQLStore)(nil)
	_ Repository = (*MemoryStore)(nil)
)
