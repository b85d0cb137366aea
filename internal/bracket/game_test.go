package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameAdjust(t *testing.T) {
	g := Game{ID: 1, MatchID: 1}

	assert.NoError(t, g.Adjust(Slot1, 1))
	assert.NoError(t, g.Adjust(Slot1, 1))
	assert.NoError(t, g.Adjust(Slot2, 1))
	assert.NoError(t, g.Adjust(Slot1, -1))
	assert.Equal(t, 1, g.Player1Score)
	assert.Equal(t, 1, g.Player2Score)

	// clamped at zero
	assert.NoError(t, g.Adjust(Slot2, -1))
	assert.NoError(t, g.Adjust(Slot2, -1))
	assert.Equal(t, 0, g.Player2Score)
}

func TestGameAdjustRejectsBadInput(t *testing.T) {
	g := Game{}
	assert.ErrorIs(t, g.Adjust(Slot(3), 1), ErrInvalidArgument)
	assert.ErrorIs(t, g.Adjust(Slot1, 2), ErrInvalidArgument)
	assert.ErrorIs(t, g.Adjust(Slot1, 0), ErrInvalidArgument)
	assert.Equal(t, Game{}, g)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindNotFound, Kind(ErrNotFound))
	assert.Equal(t, KindInternal, Kind(assert.AnError))
}
