// Package ids hands out the smallest free integer IDs so that IDs released by
// deletions are reused before new ones.
package ids

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
)

type Namespace string

const (
	Matches Namespace = "matches"
	Games   Namespace = "games"
)

// Source lists the IDs currently held by live rows.
type Source interface {
	ListLiveMatchIDs(ctx context.Context) ([]int, error)
	ListLiveGameIDs(ctx context.Context) ([]int, error)
}

// Reserve returns the count smallest unused IDs of ns in ascending order.
// They only become live once the caller commits rows that use them, so src
// should be read inside the same atomic unit as that commit.
func Reserve(ctx context.Context, src Source, ns Namespace, count int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: cannot reserve %d ids", bracket.ErrInvalidArgument, count)
	}

	var (
		live []int
		err  error
	)
	switch ns {
	case Matches:
		live, err = src.ListLiveMatchIDs(ctx)
	case Games:
		live, err = src.ListLiveGameIDs(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown id namespace %q", bracket.ErrInvalidArgument, ns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list live %s ids: %w", ns, err)
	}

	return SmallestUnused(live, count)
}

// SmallestUnused walks up from zero collecting integers absent from live.
func SmallestUnused(live []int, count int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: cannot reserve %d ids", bracket.ErrInvalidArgument, count)
	}

	taken := make(map[int]struct{}, len(live))
	for _, id := range live {
		taken[id] = struct{}{}
	}

	free := make([]int, 0, count)
	for id := 0; len(free) < count; id++ {
		if _, ok := taken[id]; !ok {
			free = append(free, id)
		}
	}
	return free, nil
}
