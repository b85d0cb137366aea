package store

import (
	"context"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/jmoiron/sqlx"
)

func (s *SQLStore) GetGame(ctx context.Context, id int) (*bracket.Game, error) {
	var game bracket.Game
	err := s.db.GetContext(ctx, &game, s.db.Rebind("SELECT * FROM games WHERE id = ?"), id)
	if err != nil {
		return nil, lookup(err, "game", id)
	}
	return &game, nil
}

func (s *SQLStore) GetGamesOfMatch(ctx context.Context, matchID int) ([]bracket.Game, error) {
	games := []bracket.Game{}
	err := s.db.SelectContext(ctx, &games, s.db.Rebind("SELECT * FROM games WHERE match_id = ? ORDER BY id ASC"), matchID)
	return games, classify(err)
}

func (s *SQLStore) ListGames(ctx context.Context) ([]bracket.Game, error) {
	games := []bracket.Game{}
	err := s.db.SelectContext(ctx, &games, "SELECT * FROM games ORDER BY id ASC")
	return games, classify(err)
}

// AdjustGameScore reads, adjusts and writes back one game inside a single
// transaction so concurrent clicks are not lost.
func (s *SQLStore) AdjustGameScore(ctx context.Context, gameID int, slot bracket.Slot, delta int) (*bracket.Game, error) {
	var game bracket.Game
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &game, tx.Rebind("SELECT * FROM games WHERE id = ?"), gameID); err != nil {
			return lookup(err, "game", gameID)
		}
		if err := game.Adjust(slot, delta); err != nil {
			return err
		}
		_, err := tx.NamedExecContext(ctx, `UPDATE games SET player_1_score = :player_1_score, player_2_score = :player_2_score
			WHERE id = :id`, &game)
		return classify(err)
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}
