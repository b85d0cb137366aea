package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	testCases := []struct {
		name          string
		playerCount   int
		expectedCount int
		expectedEdges int
	}{
		{name: "two players", playerCount: 2, expectedCount: 2, expectedEdges: 0},
		{name: "four players", playerCount: 4, expectedCount: 4, expectedEdges: 1},
		{name: "six players", playerCount: 6, expectedCount: 6, expectedEdges: 2},
		{name: "odd count rounds up", playerCount: 5, expectedCount: 6, expectedEdges: 2},
		{name: "fourteen players", playerCount: 14, expectedCount: 14, expectedEdges: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			forEachRepository(t, func(t *testing.T, s *services) {
				ctx := context.Background()

				data, err := s.tournaments.CreateTournament(ctx, 1, "Spring Open", tc.playerCount)
				require.NoError(t, err)

				assert.Equal(t, tc.expectedCount, data.Tournament.PlayerCount)
				assert.Len(t, data.Matches, tc.expectedCount-1)
				assert.Len(t, data.Edges, tc.expectedEdges)

				games, err := s.repo.ListGames(ctx)
				require.NoError(t, err)
				assert.Len(t, games, (tc.expectedCount-1)*bracket.GamesPerMatch)
				for _, g := range games {
					assert.Zero(t, g.Player1Score)
					assert.Zero(t, g.Player2Score)
				}

				stored, err := s.tournaments.GetTournamentData(ctx, 1)
				require.NoError(t, err)
				assert.Equal(t, "Spring Open", stored.Tournament.Name)
				assert.Equal(t, "2024-03-09", stored.Tournament.CreatedDate.UTC().Format("2006-01-02"))
				assert.Equal(t, data.RootID, stored.RootID)
				assert.ElementsMatch(t, data.Edges, stored.Edges)
			})
		})
	}
}

func TestCreateTournamentFourPlayers(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		data, err := s.tournaments.CreateTournament(ctx, 1, "Quad", 4)
		require.NoError(t, err)

		require.Len(t, data.Edges, 1)
		assert.Equal(t, bracket.Edge{ParentID: 2, LeftChildID: 0, RightChildID: 1}, data.Edges[0])
		assert.Equal(t, 2, data.RootID)

		columns := data.Columns()
		require.Len(t, columns, 2)
		assert.Len(t, columns[0].Matches, 2)
		assert.Len(t, columns[1].Matches, 1)
	})
}

func TestCreateTournamentInvalid(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		testCases := []struct {
			name        string
			id          int
			tName       string
			playerCount int
		}{
			{name: "empty name", id: 1, tName: "   ", playerCount: 4},
			{name: "separator in name", id: 1, tName: "a|b", playerCount: 4},
			{name: "zero players", id: 1, tName: "Cup", playerCount: 0},
			{name: "negative players", id: 1, tName: "Cup", playerCount: -3},
			{name: "too many players", id: 1, tName: "Cup", playerCount: MaxPlayerCount + 2},
			{name: "negative id", id: -1, tName: "Cup", playerCount: 4},
		}
		for _, tc := range testCases {
			_, err := s.tournaments.CreateTournament(ctx, tc.id, tc.tName, tc.playerCount)
			assert.ErrorIs(t, err, bracket.ErrInvalidArgument, tc.name)
		}

		matches, err := s.repo.ListMatches(ctx)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}

func TestCreateTournamentDuplicateID(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.tournaments.CreateTournament(ctx, 3, "First", 4)
		require.NoError(t, err)

		_, err = s.tournaments.CreateTournament(ctx, 3, "Second", 8)
		assert.ErrorIs(t, err, bracket.ErrConflictingState)

		matches, err := s.repo.ListMatches(ctx)
		require.NoError(t, err)
		assert.Len(t, matches, 3, "failed create must not leave matches behind")
	})
}

func TestCreateTournamentCancelled(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.tournaments.CreateTournament(ctx, 1, "Cancelled", 8)
		require.Error(t, err)

		tournaments, err := s.tournaments.ListTournaments(context.Background())
		require.NoError(t, err)
		assert.Empty(t, tournaments)
	})
}

func TestDeleteTournament(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.tournaments.CreateTournament(ctx, 1, "Keep", 4)
		require.NoError(t, err)
		_, err = s.tournaments.CreateTournament(ctx, 2, "Drop", 6)
		require.NoError(t, err)

		require.NoError(t, s.tournaments.DeleteTournament(ctx, 2))

		matches, err := s.repo.ListMatches(ctx)
		require.NoError(t, err)
		assert.Len(t, matches, 3)
		games, err := s.repo.ListGames(ctx)
		require.NoError(t, err)
		assert.Len(t, games, 3*bracket.GamesPerMatch)
		edges, err := s.repo.ListEdges(ctx)
		require.NoError(t, err)
		assert.Len(t, edges, 1)

		_, err = s.tournaments.GetTournamentData(ctx, 2)
		assert.ErrorIs(t, err, bracket.ErrNotFound)

		err = s.tournaments.DeleteTournament(ctx, 2)
		assert.ErrorIs(t, err, bracket.ErrNotFound)
	})
}

func TestDeletedIDsAreRecycled(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		first, err := s.tournaments.CreateTournament(ctx, 1, "First", 4)
		require.NoError(t, err)
		_, err = s.tournaments.CreateTournament(ctx, 2, "Second", 4)
		require.NoError(t, err)

		require.NoError(t, s.tournaments.DeleteTournament(ctx, 1))

		third, err := s.tournaments.CreateTournament(ctx, 3, "Third", 4)
		require.NoError(t, err)

		ids := func(matches []bracket.Match) []int {
			out := make([]int, 0, len(matches))
			for _, m := range matches {
				out = append(out, m.ID)
			}
			return out
		}
		assert.ElementsMatch(t, ids(first.Matches), ids(third.Matches))

		games, err := s.matches.GetGames(ctx, third.RootID)
		require.NoError(t, err)
		require.Len(t, games, bracket.GamesPerMatch)
		assert.Equal(t, 2*bracket.GamesPerMatch, games[0].ID)
	})
}

func TestRenameTournament(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.tournaments.CreateTournament(ctx, 1, "Old", 2)
		require.NoError(t, err)

		require.NoError(t, s.tournaments.RenameTournament(ctx, 1, "  New  "))

		tournaments, err := s.tournaments.ListTournaments(ctx)
		require.NoError(t, err)
		require.Len(t, tournaments, 1)
		assert.Equal(t, "New", tournaments[0].Name)

		assert.ErrorIs(t, s.tournaments.RenameTournament(ctx, 9, "Missing"), bracket.ErrNotFound)
		assert.ErrorIs(t, s.tournaments.RenameTournament(ctx, 1, ""), bracket.ErrInvalidArgument)
	})
}

func TestFetchAll(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		data, err := s.tournaments.CreateTournament(ctx, 4, "Snapshot", 4)
		require.NoError(t, err)
		_, err = s.players.CreatePlayer(ctx, 11, "Ann", 1500)
		require.NoError(t, err)

		snap, err := s.tournaments.FetchAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, TournamentRow{Name: "Snapshot", PlayerCount: 4, CreatedDate: "2024-03-09"}, snap.Tournaments[4])
		assert.Len(t, snap.Matches, 3)
		assert.Len(t, snap.Games, 3*bracket.GamesPerMatch)
		assert.Equal(t, PlayerRow{Name: "Ann", Skill: 1500}, snap.Players[11])
		assert.Equal(t, PlayerRow{Name: bracket.ByeName}, snap.Bye)

		require.Contains(t, snap.Tree, data.RootID)
		assert.Equal(t, TreeRow{LeftChildID: 0, RightChildID: 1}, snap.Tree[data.RootID])

		root := snap.Matches[data.RootID]
		assert.Equal(t, 4, root.TournamentID)
		assert.False(t, root.IsLeaf)
		assert.Nil(t, root.Player1ID)
	})
}
