package bracket

import (
	"fmt"
	"sort"
)

// Plan is the full set of rows for one bracket, ready to persist.
type Plan struct {
	Matches []Match
	Games   []Game
	Edges   []Edge
	RootID  int
}

// Children returns the edge naming matchID as parent, if any.
func (p *Plan) Children(matchID int) (Edge, bool) {
	for _, e := range p.Edges {
		if e.ParentID == matchID {
			return e, true
		}
	}
	return Edge{}, false
}

// Root returns the final of the bracket.
func (p *Plan) Root() Match {
	for _, m := range p.Matches {
		if m.ID == p.RootID {
			return m
		}
	}
	panic(fmt.Sprintf("bracket: root %d missing from plan", p.RootID))
}

// Assign stamps every match with the owning tournament.
func (p *Plan) Assign(tournamentID int) {
	for i := range p.Matches {
		p.Matches[i].TournamentID = tournamentID
	}
}

type planner struct {
	matchIDs []int
	gameIDs  []int
	plan     *Plan
}

// Build lays out a single-elimination bracket for an even number of players.
// IDs are consumed from matchIDs and gameIDs strictly in order, so the shape
// of the result depends on playerCount alone.
func Build(playerCount int, matchIDs, gameIDs []int) (*Plan, error) {
	if playerCount < 2 || playerCount%2 != 0 {
		return nil, fmt.Errorf("%w: player count must be even and at least 2, got %d", ErrInvalidArgument, playerCount)
	}
	total := playerCount - 1
	if len(matchIDs) != total {
		return nil, fmt.Errorf("%w: need %d match ids, got %d", ErrInvalidArgument, total, len(matchIDs))
	}
	if len(gameIDs) != total*GamesPerMatch {
		return nil, fmt.Errorf("%w: need %d game ids, got %d", ErrInvalidArgument, total*GamesPerMatch, len(gameIDs))
	}

	p := &planner{
		matchIDs: matchIDs,
		gameIDs:  gameIDs,
		plan: &Plan{
			Matches: make([]Match, 0, total),
			Games:   make([]Game, 0, total*GamesPerMatch),
			Edges:   make([]Edge, 0, total-playerCount/2),
		},
	}

	column := make([]int, playerCount/2)
	for i := range column {
		column[i] = p.newMatch(1, i+1, true)
	}

	var straggler *int
	for round := 2; len(column) > 1 || straggler != nil; round++ {
		column, straggler = p.nextColumn(round, column, straggler)
	}

	p.plan.RootID = column[0]
	p.verify(playerCount)
	return p.plan, nil
}

// nextColumn pairs prev left to right. An odd leftover is held as the
// straggler, or joined with the one already held into an extra match at the
// end of the new column.
func (p *planner) nextColumn(round int, prev []int, straggler *int) ([]int, *int) {
	var held *int
	if len(prev)%2 != 0 {
		last := prev[len(prev)-1]
		held = &last
		prev = prev[:len(prev)-1]
	}

	next := make([]int, 0, len(prev)/2+1)
	for i := 0; i+1 < len(prev); i += 2 {
		next = append(next, p.join(round, len(next)+1, prev[i], prev[i+1]))
	}

	switch {
	case held == nil:
		return next, straggler
	case straggler == nil:
		return next, held
	default:
		// older straggler goes left
		next = append(next, p.join(round, len(next)+1, *straggler, *held))
		return next, nil
	}
}

func (p *planner) newMatch(round, order int, leaf bool) int {
	idx := len(p.plan.Matches)
	id := p.matchIDs[idx]
	p.plan.Matches = append(p.plan.Matches, Match{
		ID:            id,
		RoundNumber:   round,
		MatchOrder:    order,
		CreationOrder: idx,
		IsLeaf:        leaf,
	})
	for g := 0; g < GamesPerMatch; g++ {
		p.plan.Games = append(p.plan.Games, Game{
			ID:      p.gameIDs[idx*GamesPerMatch+g],
			MatchID: id,
		})
	}
	return id
}

func (p *planner) join(round, order, left, right int) int {
	id := p.newMatch(round, order, false)
	p.plan.Edges = append(p.plan.Edges, Edge{ParentID: id, LeftChildID: left, RightChildID: right})
	return id
}

// verify panics when the plan is not a full binary tree over playerCount/2
// leaves. Reaching it means the builder itself is broken.
func (p *planner) verify(playerCount int) {
	plan := p.plan
	if len(plan.Matches) != playerCount-1 || len(plan.Games) != len(plan.Matches)*GamesPerMatch {
		panic(fmt.Sprintf("bracket: built %d matches and %d games for %d players", len(plan.Matches), len(plan.Games), playerCount))
	}
	if len(plan.Edges) != playerCount/2-1 {
		panic(fmt.Sprintf("bracket: built %d edges for %d players", len(plan.Edges), playerCount))
	}

	parents := make(map[int]int, len(plan.Matches))
	for _, e := range plan.Edges {
		parents[e.LeftChildID]++
		parents[e.RightChildID]++
	}
	roots := 0
	for _, m := range plan.Matches {
		switch parents[m.ID] {
		case 0:
			roots++
		case 1:
		default:
			panic(fmt.Sprintf("bracket: match %d feeds %d parents", m.ID, parents[m.ID]))
		}
	}
	if roots != 1 || parents[plan.RootID] != 0 {
		panic(fmt.Sprintf("bracket: expected a single root, found %d", roots))
	}
}

// Column is one round of a bracket in match order.
type Column struct {
	RoundNumber int
	Matches     []Match
}

// Columns groups matches by round for layout.
func Columns(matches []Match) []Column {
	rounds := make(map[int][]Match)
	var roundNums []int
	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}
	sort.Ints(roundNums)

	columns := make([]Column, 0, len(roundNums))
	for _, r := range roundNums {
		ms := rounds[r]
		sort.Slice(ms, func(i, j int) bool {
			return ms[i].MatchOrder < ms[j].MatchOrder
		})
		columns = append(columns, Column{RoundNumber: r, Matches: ms})
	}
	return columns
}
