package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/store"
)

// MatchService covers what the scoring UI does during a tournament: reading
// the tree, moving scores and filling player slots. Winners are never
// inferred here.
type MatchService struct {
	repo   store.Repository
	logger *slog.Logger
}

func NewMatchService(repo store.Repository, logger *slog.Logger) *MatchService {
	return &MatchService{repo: repo, logger: logger}
}

func (s *MatchService) GetMatch(ctx context.Context, id int) (*bracket.Match, error) {
	return s.repo.GetMatch(ctx, id)
}

// GetMatchChildren returns the two matches feeding into matchID, or nil for a
// leaf match.
func (s *MatchService) GetMatchChildren(ctx context.Context, matchID int) (*bracket.Edge, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsLeaf {
		return nil, nil
	}

	edge, err := s.repo.GetMatchChildren(ctx, matchID)
	if errors.Is(err, bracket.ErrNotFound) {
		return nil, fmt.Errorf("internal match %d has no recorded children", matchID)
	}
	return edge, err
}

func (s *MatchService) GetGames(ctx context.Context, matchID int) ([]bracket.Game, error) {
	if _, err := s.repo.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return s.repo.GetGamesOfMatch(ctx, matchID)
}

// AdjustScore moves one player's score in a game by +1 or -1.
func (s *MatchService) AdjustScore(ctx context.Context, gameID int, slot bracket.Slot, delta int) (*bracket.Game, error) {
	if !slot.Valid() {
		return nil, fmt.Errorf("%w: slot must be 1 or 2, got %d", bracket.ErrInvalidArgument, slot)
	}
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("%w: score delta must be +1 or -1, got %d", bracket.ErrInvalidArgument, delta)
	}

	game, err := s.repo.AdjustGameScore(ctx, gameID, slot, delta)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("score adjusted", logging.FieldGameID, gameID, "slot", int(slot), "delta", delta)
	}
	return game, nil
}

// SetMatchPlayer puts a player, or the bye when playerID is nil, into a slot.
func (s *MatchService) SetMatchPlayer(ctx context.Context, matchID int, slot bracket.Slot, playerID *int) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: slot must be 1 or 2, got %d", bracket.ErrInvalidArgument, slot)
	}
	if playerID != nil {
		if _, err := s.repo.GetPlayer(ctx, *playerID); err != nil {
			return err
		}
	}
	if err := s.repo.SetMatchPlayer(ctx, matchID, slot, playerID); err != nil {
		return err
	}

	var player any = "bye"
	if playerID != nil {
		player = *playerID
	}
	logging.Info(s.logger, "match slot assigned",
		logging.FieldMatchID, matchID,
		"slot", int(slot),
		logging.FieldPlayerID, player,
	)
	return nil
}
