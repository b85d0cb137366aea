package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/ids"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/store"
	"github.com/AdamBeresnev/bracketd/internal/utils"
)

// MaxPlayerCount bounds a single bracket.
const MaxPlayerCount = 1024

type TournamentService struct {
	repo   store.Repository
	logger *slog.Logger
	now    func() time.Time

	// Serialises id reservation with the commit that makes those ids live.
	// Snapshot reads take it shared so they never see half a cascade.
	writeMu sync.RWMutex
}

func NewTournamentService(repo store.Repository, logger *slog.Logger) *TournamentService {
	return &TournamentService{repo: repo, logger: logger, now: time.Now}
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Matches    []bracket.Match
	Edges      []bracket.Edge
	RootID     int
}

// Columns lays the matches out round by round.
func (d *TournamentData) Columns() []bracket.Column {
	return bracket.Columns(d.Matches)
}

func validName(name string) (string, error) {
	trimmed := utils.StringOrNil(name)
	if trimmed == nil {
		return "", fmt.Errorf("%w: name must not be empty", bracket.ErrInvalidArgument)
	}
	if strings.ContainsAny(*trimmed, "|\n") {
		return "", fmt.Errorf("%w: name must not contain '|' or newlines", bracket.ErrInvalidArgument)
	}
	return *trimmed, nil
}

// CreateTournament reserves ids, builds the bracket and persists all of it in
// one atomic unit. Odd player counts are rounded up to admit a bye.
func (s *TournamentService) CreateTournament(ctx context.Context, id int, name string, playerCount int) (*TournamentData, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	if id < 0 {
		return nil, fmt.Errorf("%w: tournament id must not be negative", bracket.ErrInvalidArgument)
	}
	playerCount = bracket.EvenPlayerCount(playerCount)
	if playerCount < 2 || playerCount > MaxPlayerCount {
		return nil, fmt.Errorf("%w: player count must be between 2 and %d, got %d", bracket.ErrInvalidArgument, MaxPlayerCount, playerCount)
	}

	now := s.now().UTC()
	tournament := &bracket.Tournament{
		ID:          id,
		Name:        name,
		PlayerCount: playerCount,
		CreatedDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var plan *bracket.Plan
	err = s.repo.Atomic(ctx, func(w store.Writer) error {
		if _, err := w.GetTournament(ctx, id); err == nil {
			return fmt.Errorf("%w: tournament %d already exists", bracket.ErrConflictingState, id)
		} else if !errors.Is(err, bracket.ErrNotFound) {
			return err
		}

		total := playerCount - 1
		matchIDs, err := ids.Reserve(ctx, w, ids.Matches, total)
		if err != nil {
			return err
		}
		gameIDs, err := ids.Reserve(ctx, w, ids.Games, total*bracket.GamesPerMatch)
		if err != nil {
			return err
		}

		plan, err = bracket.Build(playerCount, matchIDs, gameIDs)
		if err != nil {
			return err
		}
		plan.Assign(id)

		if err := w.SaveTournament(ctx, tournament); err != nil {
			return fmt.Errorf("failed to save tournament: %w", err)
		}
		if err := w.SaveMatches(ctx, plan.Matches); err != nil {
			return fmt.Errorf("failed to save matches: %w", err)
		}
		if err := w.SaveGames(ctx, plan.Games); err != nil {
			return fmt.Errorf("failed to save games: %w", err)
		}
		if err := w.SaveEdges(ctx, plan.Edges); err != nil {
			return fmt.Errorf("failed to save match tree: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Info(s.logger, "tournament created",
		logging.FieldTournamentID, id,
		logging.FieldPlayerCount, playerCount,
		logging.FieldCount, len(plan.Matches),
	)

	return &TournamentData{
		Tournament: tournament,
		Matches:    plan.Matches,
		Edges:      plan.Edges,
		RootID:     plan.RootID,
	}, nil
}

func (s *TournamentService) DeleteTournament(ctx context.Context, id int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.DeleteTournamentCascade(ctx, id); err != nil {
		return err
	}
	logging.Info(s.logger, "tournament deleted", logging.FieldTournamentID, id)
	return nil
}

func (s *TournamentService) RenameTournament(ctx context.Context, id int, name string) error {
	name, err := validName(name)
	if err != nil {
		return err
	}
	return s.repo.RenameTournament(ctx, id, name)
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.repo.ListTournaments(ctx)
}

// GetTournamentData loads a tournament with its bracket in creation order.
func (s *TournamentService) GetTournamentData(ctx context.Context, id int) (*TournamentData, error) {
	s.writeMu.RLock()
	defer s.writeMu.RUnlock()

	tournament, err := s.repo.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	matches, err := s.repo.GetMatchesOfTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	edges, err := s.repo.ListEdgesOfTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get edges of tournament %d: %w", id, err)
	}

	isChild := make(map[int]bool, len(matches))
	for _, e := range edges {
		isChild[e.LeftChildID] = true
		isChild[e.RightChildID] = true
	}

	rootID := -1
	for _, m := range matches {
		if !isChild[m.ID] {
			rootID = m.ID
			break
		}
	}

	return &TournamentData{
		Tournament: tournament,
		Matches:    matches,
		Edges:      edges,
		RootID:     rootID,
	}, nil
}
