package store

import (
	"context"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/jmoiron/sqlx"
)

const (
	createPlayerQuery = `
		INSERT INTO players (id, name, skill) VALUES
		(:id, :name, :skill)
	`
	updatePlayerQuery = `
		UPDATE players SET
		name = :name,
		skill = :skill
		WHERE id = :id
	`
)

func (s *SQLStore) SavePlayer(ctx context.Context, player *bracket.Player) error {
	_, err := s.db.NamedExecContext(ctx, createPlayerQuery, player)
	return classify(err)
}

func (s *SQLStore) UpdatePlayer(ctx context.Context, player *bracket.Player) error {
	res, err := s.db.NamedExecContext(ctx, updatePlayerQuery, player)
	if err != nil {
		return classify(err)
	}
	return expectRow(res, "player", derefID(player.ID))
}

// DeletePlayer removes the player and hands their match slots back to the bye.
func (s *SQLStore) DeletePlayer(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			"UPDATE matches SET player_1_id = NULL WHERE player_1_id = ?",
			"UPDATE matches SET player_2_id = NULL WHERE player_2_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
				return classify(err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM players WHERE id = ?"), id)
		if err != nil {
			return classify(err)
		}
		return expectRow(res, "player", id)
	})
}

func (s *SQLStore) GetPlayer(ctx context.Context, id int) (*bracket.Player, error) {
	var player bracket.Player
	err := s.db.GetContext(ctx, &player, s.db.Rebind("SELECT * FROM players WHERE id = ?"), id)
	if err != nil {
		return nil, lookup(err, "player", id)
	}
	return &player, nil
}

func (s *SQLStore) ListPlayers(ctx context.Context) ([]bracket.Player, error) {
	players := []bracket.Player{}
	err := s.db.SelectContext(ctx, &players, "SELECT * FROM players ORDER BY id ASC")
	return players, classify(err)
}

func derefID(id *int) int {
	if id == nil {
		return -1
	}
	return *id
}
