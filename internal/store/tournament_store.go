package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracketd/internal/bracket"
	"github.com/jmoiron/sqlx"
)

// Rows per INSERT statement, well under SQLite's bound variable limit.
const insertBatchSize = 200

const (
	insertTournamentQuery = `INSERT INTO tournaments (id, name, player_count, created_date)
        VALUES (:id, :name, :player_count, :created_date)`
	insertMatchesQuery = `INSERT INTO matches (id, tournament_id, round_number, match_order, creation_order, is_leaf, player_1_id, player_2_id)
		VALUES (:id, :tournament_id, :round_number, :match_order, :creation_order, :is_leaf, :player_1_id, :player_2_id)`
	insertGamesQuery = `INSERT INTO games (id, match_id, player_1_score, player_2_score)
		VALUES (:id, :match_id, :player_1_score, :player_2_score)`
	insertEdgesQuery = `INSERT INTO match_tree (parent_id, left_child_id, right_child_id)
		VALUES (:parent_id, :left_child_id, :right_child_id)`

	tournamentMatchIDs = `SELECT id FROM matches WHERE tournament_id = ?`
)

// SQLStore is the Repository backed by a SQL database through sqlx. The
// queries are written with ? placeholders and rebound for the driver in use.
type SQLStore struct {
	db *sqlx.DB
	sqlWriter
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, sqlWriter: sqlWriter{ext: db}}
}

// sqlWriter runs the Writer methods against either the pool or a transaction.
type sqlWriter struct {
	ext sqlx.ExtContext
}

func (s *SQLStore) Atomic(ctx context.Context, fn func(w Writer) error) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&sqlWriter{ext: tx})
	})
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(tx.Commit())
}

func insertBatches[T any](ctx context.Context, ext sqlx.ExtContext, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if _, err := sqlx.NamedExecContext(ctx, ext, query, rows[start:end]); err != nil {
			return classify(err)
		}
	}
	return nil
}

func (w *sqlWriter) SaveTournament(ctx context.Context, tournament *bracket.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, w.ext, insertTournamentQuery, tournament)
	return classify(err)
}

func (w *sqlWriter) SaveMatches(ctx context.Context, matches []bracket.Match) error {
	return insertBatches(ctx, w.ext, insertMatchesQuery, matches)
}

func (w *sqlWriter) SaveGames(ctx context.Context, games []bracket.Game) error {
	return insertBatches(ctx, w.ext, insertGamesQuery, games)
}

func (w *sqlWriter) SaveEdges(ctx context.Context, edges []bracket.Edge) error {
	return insertBatches(ctx, w.ext, insertEdgesQuery, edges)
}

func (w *sqlWriter) GetTournament(ctx context.Context, id int) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, w.ext, &tournament, w.ext.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return nil, lookup(err, "tournament", id)
	}
	return &tournament, nil
}

func (w *sqlWriter) ListLiveMatchIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	err := sqlx.SelectContext(ctx, w.ext, &ids, "SELECT id FROM matches ORDER BY id")
	return ids, classify(err)
}

func (w *sqlWriter) ListLiveGameIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	err := sqlx.SelectContext(ctx, w.ext, &ids, "SELECT id FROM games ORDER BY id")
	return ids, classify(err)
}

func (s *SQLStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	tournaments := []bracket.Tournament{}
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY id ASC")
	return tournaments, classify(err)
}

func (s *SQLStore) RenameTournament(ctx context.Context, id int, name string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE tournaments SET name = ? WHERE id = ?"), name, id)
	if err != nil {
		return classify(err)
	}
	return expectRow(res, "tournament", id)
}

func (s *SQLStore) DeleteTournamentCascade(ctx context.Context, id int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := (&sqlWriter{ext: tx}).GetTournament(ctx, id); err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM match_tree WHERE parent_id IN (` + tournamentMatchIDs + `)
				OR left_child_id IN (` + tournamentMatchIDs + `)
				OR right_child_id IN (` + tournamentMatchIDs + `)`,
			`DELETE FROM games WHERE match_id IN (` + tournamentMatchIDs + `)`,
			`DELETE FROM matches WHERE tournament_id = ?`,
			`DELETE FROM tournaments WHERE id = ?`,
		}
		for _, stmt := range stmts {
			args := make([]any, countPlaceholders(stmt))
			for i := range args {
				args[i] = id
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), args...); err != nil {
				return fmt.Errorf("failed to cascade delete of tournament %d: %w", id, classify(err))
			}
		}
		return nil
	})
}

func (s *SQLStore) GetMatch(ctx context.Context, id int) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, s.db.Rebind("SELECT * FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, lookup(err, "match", id)
	}
	return &match, nil
}

func (s *SQLStore) GetMatchChildren(ctx context.Context, matchID int) (*bracket.Edge, error) {
	var edge bracket.Edge
	err := s.db.GetContext(ctx, &edge, s.db.Rebind("SELECT * FROM match_tree WHERE parent_id = ?"), matchID)
	if err != nil {
		return nil, lookup(err, "children of match", matchID)
	}
	return &edge, nil
}

func (s *SQLStore) GetMatchesOfTournament(ctx context.Context, tournamentID int) ([]bracket.Match, error) {
	matches := []bracket.Match{}
	err := s.db.SelectContext(ctx, &matches, s.db.Rebind("SELECT * FROM matches WHERE tournament_id = ? ORDER BY creation_order ASC"), tournamentID)
	return matches, classify(err)
}

func (s *SQLStore) SetMatchPlayer(ctx context.Context, matchID int, slot bracket.Slot, playerID *int) error {
	var query string
	switch slot {
	case bracket.Slot1:
		query = "UPDATE matches SET player_1_id = ? WHERE id = ?"
	case bracket.Slot2:
		query = "UPDATE matches SET player_2_id = ? WHERE id = ?"
	default:
		return fmt.Errorf("%w: slot %d", bracket.ErrInvalidArgument, slot)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), playerID, matchID)
	if err != nil {
		return classify(err)
	}
	return expectRow(res, "match", matchID)
}

func (s *SQLStore) ListMatches(ctx context.Context) ([]bracket.Match, error) {
	matches := []bracket.Match{}
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches ORDER BY tournament_id ASC, creation_order ASC")
	return matches, classify(err)
}

const tournamentEdgesQuery = `
	SELECT mt.parent_id, mt.left_child_id, mt.right_child_id
	FROM match_tree mt
	JOIN matches m ON m.id = mt.parent_id
	WHERE m.tournament_id = ?
	ORDER BY m.creation_order ASC
`

func (s *SQLStore) ListEdgesOfTournament(ctx context.Context, tournamentID int) ([]bracket.Edge, error) {
	edges := []bracket.Edge{}
	err := s.db.SelectContext(ctx, &edges, s.db.Rebind(tournamentEdgesQuery), tournamentID)
	return edges, classify(err)
}

func (s *SQLStore) ListEdges(ctx context.Context) ([]bracket.Edge, error) {
	edges := []bracket.Edge{}
	err := s.db.SelectContext(ctx, &edges, "SELECT * FROM match_tree ORDER BY parent_id ASC")
	return edges, classify(err)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectRow(res rowsAffecter, entity string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

func countPlaceholders(query string) int {
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
		}
	}
	return n
}
