package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/store"
	"github.com/AdamBeresnev/bracketd/internal/utils"
)

type PlayerService struct {
	repo   store.Repository
	logger *slog.Logger
}

func NewPlayerService(repo store.Repository, logger *slog.Logger) *PlayerService {
	return &PlayerService{repo: repo, logger: logger}
}

func playerInput(id int, name string, skill int) (*bracket.Player, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: player id must not be negative", bracket.ErrInvalidArgument)
	}
	if skill < 0 {
		return nil, fmt.Errorf("%w: skill must not be negative", bracket.ErrInvalidArgument)
	}
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	return &bracket.Player{ID: utils.Ptr(id), Name: name, Skill: skill}, nil
}

func (s *PlayerService) CreatePlayer(ctx context.Context, id int, name string, skill int) (*bracket.Player, error) {
	player, err := playerInput(id, name, skill)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	logging.Info(s.logger, "player created", logging.FieldPlayerID, id)
	return player, nil
}

func (s *PlayerService) UpdatePlayer(ctx context.Context, id int, name string, skill int) (*bracket.Player, error) {
	player, err := playerInput(id, name, skill)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player; any match slot they held reverts to the bye.
func (s *PlayerService) DeletePlayer(ctx context.Context, id int) error {
	if id < 0 {
		return fmt.Errorf("%w: player id must not be negative", bracket.ErrInvalidArgument)
	}
	if err := s.repo.DeletePlayer(ctx, id); err != nil {
		return err
	}
	logging.Info(s.logger, "player deleted", logging.FieldPlayerID, id)
	return nil
}

// ListPlayers returns the bye sentinel followed by every stored player.
func (s *PlayerService) ListPlayers(ctx context.Context) ([]bracket.Player, error) {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	return append([]bracket.Player{bracket.Bye()}, players...), nil
}
