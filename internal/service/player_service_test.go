package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayers(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		players, err := s.players.ListPlayers(ctx)
		require.NoError(t, err)
		require.Len(t, players, 1)
		assert.True(t, players[0].IsBye())

		_, err = s.players.CreatePlayer(ctx, 2, "Cy", 900)
		require.NoError(t, err)
		_, err = s.players.CreatePlayer(ctx, 1, "Di", 1100)
		require.NoError(t, err)

		_, err = s.players.CreatePlayer(ctx, 2, "Dup", 1)
		assert.ErrorIs(t, err, bracket.ErrConflictingState)

		players, err = s.players.ListPlayers(ctx)
		require.NoError(t, err)
		require.Len(t, players, 3)
		assert.True(t, players[0].IsBye())
		assert.Equal(t, "Di", players[1].Name)
		assert.Equal(t, "Cy", players[2].Name)

		updated, err := s.players.UpdatePlayer(ctx, 2, "Cyrus", 950)
		require.NoError(t, err)
		assert.Equal(t, "Cyrus", updated.Name)

		_, err = s.players.UpdatePlayer(ctx, 3, "Nobody", 1)
		assert.ErrorIs(t, err, bracket.ErrNotFound)
	})
}

func TestCreatePlayerInvalid(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.players.CreatePlayer(ctx, -1, "Neg", 1)
		assert.ErrorIs(t, err, bracket.ErrInvalidArgument)
		_, err = s.players.CreatePlayer(ctx, 1, "Neg", -1)
		assert.ErrorIs(t, err, bracket.ErrInvalidArgument)
		_, err = s.players.CreatePlayer(ctx, 1, "", 1)
		assert.ErrorIs(t, err, bracket.ErrInvalidArgument)
	})
}

func TestDeletePlayerRevertsSlotsToBye(t *testing.T) {
	forEachRepository(t, func(t *testing.T, s *services) {
		ctx := context.Background()

		_, err := s.tournaments.CreateTournament(ctx, 1, "Gone", 4)
		require.NoError(t, err)
		_, err = s.players.CreatePlayer(ctx, 5, "Ed", 3)
		require.NoError(t, err)
		require.NoError(t, s.matches.SetMatchPlayer(ctx, 1, bracket.Slot1, utils.Ptr(5)))

		require.NoError(t, s.players.DeletePlayer(ctx, 5))

		match, err := s.matches.GetMatch(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, match.Player1ID)

		assert.ErrorIs(t, s.players.DeletePlayer(ctx, 5), bracket.ErrNotFound)
	})
}
