package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/AdamBeresnev/bracketd/internal/utils"
)

// MemoryStore keeps every table in maps guarded by a RWMutex. Writes inside
// Atomic are staged on a copy that replaces the live state only on success.
type MemoryStore struct {
	mu sync.RWMutex
	st *memState
}

type memState struct {
	tournaments map[int]bracket.Tournament
	matches     map[int]bracket.Match
	games       map[int]bracket.Game
	edges       map[int]bracket.Edge // keyed by parent
	players     map[int]bracket.Player
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		st: &memState{
			tournaments: make(map[int]bracket.Tournament),
			matches:     make(map[int]bracket.Match),
			games:       make(map[int]bracket.Game),
			edges:       make(map[int]bracket.Edge),
			players:     make(map[int]bracket.Player),
		},
	}
}

func (st *memState) clone() *memState {
	return &memState{
		tournaments: maps.Clone(st.tournaments),
		matches:     maps.Clone(st.matches),
		games:       maps.Clone(st.games),
		edges:       maps.Clone(st.edges),
		players:     maps.Clone(st.players),
	}
}

func conflict(entity string, id int) error {
	return fmt.Errorf("%w: %s %d already exists", bracket.ErrConflictingState, entity, id)
}

func missingRef(entity string, id int) error {
	return fmt.Errorf("%w: %s %d does not exist", bracket.ErrConflictingState, entity, id)
}

func (st *memState) SaveTournament(_ context.Context, tournament *bracket.Tournament) error {
	if _, ok := st.tournaments[tournament.ID]; ok {
		return conflict("tournament", tournament.ID)
	}
	st.tournaments[tournament.ID] = *tournament
	return nil
}

func (st *memState) SaveMatches(_ context.Context, matches []bracket.Match) error {
	seen := make(map[int]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := st.matches[m.ID]; ok {
			return conflict("match", m.ID)
		}
		if _, ok := seen[m.ID]; ok {
			return conflict("match", m.ID)
		}
		seen[m.ID] = struct{}{}
		if _, ok := st.tournaments[m.TournamentID]; !ok {
			return missingRef("tournament", m.TournamentID)
		}
		for _, p := range []*int{m.Player1ID, m.Player2ID} {
			if p == nil {
				continue
			}
			if _, ok := st.players[*p]; !ok {
				return missingRef("player", *p)
			}
		}
	}
	for _, m := range matches {
		st.matches[m.ID] = m
	}
	return nil
}

func (st *memState) SaveGames(_ context.Context, games []bracket.Game) error {
	seen := make(map[int]struct{}, len(games))
	for _, g := range games {
		if _, ok := st.games[g.ID]; ok {
			return conflict("game", g.ID)
		}
		if _, ok := seen[g.ID]; ok {
			return conflict("game", g.ID)
		}
		seen[g.ID] = struct{}{}
		if _, ok := st.matches[g.MatchID]; !ok {
			return missingRef("match", g.MatchID)
		}
	}
	for _, g := range games {
		st.games[g.ID] = g
	}
	return nil
}

func (st *memState) SaveEdges(_ context.Context, edges []bracket.Edge) error {
	seen := make(map[int]struct{}, len(edges))
	for _, e := range edges {
		if _, ok := st.edges[e.ParentID]; ok {
			return conflict("match tree edge", e.ParentID)
		}
		if _, ok := seen[e.ParentID]; ok {
			return conflict("match tree edge", e.ParentID)
		}
		seen[e.ParentID] = struct{}{}
		for _, id := range []int{e.ParentID, e.LeftChildID, e.RightChildID} {
			if _, ok := st.matches[id]; !ok {
				return missingRef("match", id)
			}
		}
	}
	for _, e := range edges {
		st.edges[e.ParentID] = e
	}
	return nil
}

func (st *memState) GetTournament(_ context.Context, id int) (*bracket.Tournament, error) {
	t, ok := st.tournaments[id]
	if !ok {
		return nil, notFound("tournament", id)
	}
	return &t, nil
}

func (st *memState) ListLiveMatchIDs(context.Context) ([]int, error) {
	return slices.Sorted(maps.Keys(st.matches)), nil
}

func (st *memState) ListLiveGameIDs(context.Context) ([]int, error) {
	return slices.Sorted(maps.Keys(st.games)), nil
}

// Writer methods on the live state, each under the write lock.

func (s *MemoryStore) write(fn func(st *memState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *MemoryStore) SaveTournament(ctx context.Context, tournament *bracket.Tournament) error {
	return s.write(func(st *memState) error { return st.SaveTournament(ctx, tournament) })
}

func (s *MemoryStore) SaveMatches(ctx context.Context, matches []bracket.Match) error {
	return s.write(func(st *memState) error { return st.SaveMatches(ctx, matches) })
}

func (s *MemoryStore) SaveGames(ctx context.Context, games []bracket.Game) error {
	return s.write(func(st *memState) error { return st.SaveGames(ctx, games) })
}

func (s *MemoryStore) SaveEdges(ctx context.Context, edges []bracket.Edge) error {
	return s.write(func(st *memState) error { return st.SaveEdges(ctx, edges) })
}

func (s *MemoryStore) GetTournament(ctx context.Context, id int) (*bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetTournament(ctx, id)
}

func (s *MemoryStore) ListLiveMatchIDs(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListLiveMatchIDs(ctx)
}

func (s *MemoryStore) ListLiveGameIDs(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListLiveGameIDs(ctx)
}

func (s *MemoryStore) Atomic(ctx context.Context, fn func(w Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = staged
	return nil
}

func (s *MemoryStore) ListTournaments(context.Context) ([]bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tournaments := slices.Collect(maps.Values(s.st.tournaments))
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].ID < tournaments[j].ID })
	return tournaments, nil
}

func (s *MemoryStore) RenameTournament(_ context.Context, id int, name string) error {
	return s.write(func(st *memState) error {
		t, ok := st.tournaments[id]
		if !ok {
			return notFound("tournament", id)
		}
		t.Name = name
		st.tournaments[id] = t
		return nil
	})
}

func (s *MemoryStore) DeleteTournamentCascade(_ context.Context, id int) error {
	return s.write(func(st *memState) error {
		if _, ok := st.tournaments[id]; !ok {
			return notFound("tournament", id)
		}

		owned := make(map[int]struct{})
		for mID, m := range st.matches {
			if m.TournamentID == id {
				owned[mID] = struct{}{}
			}
		}
		isOwned := func(matchID int) bool {
			_, ok := owned[matchID]
			return ok
		}

		maps.DeleteFunc(st.edges, func(_ int, e bracket.Edge) bool {
			return isOwned(e.ParentID) || isOwned(e.LeftChildID) || isOwned(e.RightChildID)
		})
		maps.DeleteFunc(st.games, func(_ int, g bracket.Game) bool {
			return isOwned(g.MatchID)
		})
		maps.DeleteFunc(st.matches, func(mID int, _ bracket.Match) bool {
			return isOwned(mID)
		})
		delete(st.tournaments, id)
		return nil
	})
}

func (s *MemoryStore) GetMatch(_ context.Context, id int) (*bracket.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.st.matches[id]
	if !ok {
		return nil, notFound("match", id)
	}
	return &m, nil
}

func (s *MemoryStore) GetMatchChildren(_ context.Context, matchID int) (*bracket.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.st.edges[matchID]
	if !ok {
		return nil, notFound("children of match", matchID)
	}
	return &e, nil
}

func (s *MemoryStore) GetMatchesOfTournament(_ context.Context, tournamentID int) ([]bracket.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := []bracket.Match{}
	for _, m := range s.st.matches {
		if m.TournamentID == tournamentID {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreationOrder < matches[j].CreationOrder })
	return matches, nil
}

func (s *MemoryStore) SetMatchPlayer(_ context.Context, matchID int, slot bracket.Slot, playerID *int) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: slot %d", bracket.ErrInvalidArgument, slot)
	}
	return s.write(func(st *memState) error {
		m, ok := st.matches[matchID]
		if !ok {
			return notFound("match", matchID)
		}
		if playerID != nil {
			if _, ok := st.players[*playerID]; !ok {
				return missingRef("player", *playerID)
			}
			playerID = utils.Ptr(*playerID)
		}
		m.SetPlayer(slot, playerID)
		st.matches[matchID] = m
		return nil
	})
}

func (s *MemoryStore) ListMatches(context.Context) ([]bracket.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := slices.Collect(maps.Values(s.st.matches))
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].TournamentID != matches[j].TournamentID {
			return matches[i].TournamentID < matches[j].TournamentID
		}
		return matches[i].CreationOrder < matches[j].CreationOrder
	})
	return matches, nil
}

func (s *MemoryStore) ListEdgesOfTournament(_ context.Context, tournamentID int) ([]bracket.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := []bracket.Edge{}
	for parentID, e := range s.st.edges {
		if s.st.matches[parentID].TournamentID == tournamentID {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return s.st.matches[edges[i].ParentID].CreationOrder < s.st.matches[edges[j].ParentID].CreationOrder
	})
	return edges, nil
}

func (s *MemoryStore) ListEdges(context.Context) ([]bracket.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := slices.Collect(maps.Values(s.st.edges))
	sort.Slice(edges, func(i, j int) bool { return edges[i].ParentID < edges[j].ParentID })
	return edges, nil
}

func (s *MemoryStore) GetGame(_ context.Context, id int) (*bracket.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.st.games[id]
	if !ok {
		return nil, notFound("game", id)
	}
	return &g, nil
}

func (s *MemoryStore) GetGamesOfMatch(_ context.Context, matchID int) ([]bracket.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := []bracket.Game{}
	for _, g := range s.st.games {
		if g.MatchID == matchID {
			games = append(games, g)
		}
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (s *MemoryStore) ListGames(context.Context) ([]bracket.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := slices.Collect(maps.Values(s.st.games))
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (s *MemoryStore) AdjustGameScore(_ context.Context, gameID int, slot bracket.Slot, delta int) (*bracket.Game, error) {
	var game bracket.Game
	err := s.write(func(st *memState) error {
		g, ok := st.games[gameID]
		if !ok {
			return notFound("game", gameID)
		}
		if err := g.Adjust(slot, delta); err != nil {
			return err
		}
		st.games[gameID] = g
		game = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MemoryStore) SavePlayer(_ context.Context, player *bracket.Player) error {
	if player.ID == nil {
		return fmt.Errorf("%w: the bye player is implicit", bracket.ErrInvalidArgument)
	}
	return s.write(func(st *memState) error {
		if _, ok := st.players[*player.ID]; ok {
			return conflict("player", *player.ID)
		}
		p := *player
		p.ID = utils.Ptr(*player.ID)
		st.players[*p.ID] = p
		return nil
	})
}

func (s *MemoryStore) UpdatePlayer(_ context.Context, player *bracket.Player) error {
	if player.ID == nil {
		return fmt.Errorf("%w: the bye player is implicit", bracket.ErrInvalidArgument)
	}
	return s.write(func(st *memState) error {
		p, ok := st.players[*player.ID]
		if !ok {
			return notFound("player", *player.ID)
		}
		p.Name = player.Name
		p.Skill = player.Skill
		st.players[*player.ID] = p
		return nil
	})
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id int) error {
	return s.write(func(st *memState) error {
		if _, ok := st.players[id]; !ok {
			return notFound("player", id)
		}
		for mID, m := range st.matches {
			if m.Player1ID != nil && *m.Player1ID == id {
				m.Player1ID = nil
			}
			if m.Player2ID != nil && *m.Player2ID == id {
				m.Player2ID = nil
			}
			st.matches[mID] = m
		}
		delete(st.players, id)
		return nil
	})
}

func (s *MemoryStore) GetPlayer(_ context.Context, id int) (*bracket.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.players[id]
	if !ok {
		return nil, notFound("player", id)
	}
	return &p, nil
}

func (s *MemoryStore) ListPlayers(context.Context) ([]bracket.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := slices.Collect(maps.Values(s.st.players))
	sort.Slice(players, func(i, j int) bool { return *players[i].ID < *players[j].ID })
	return players, nil
}
