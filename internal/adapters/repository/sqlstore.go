package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/okian/pitchduel/internal/domain/model"
	"github.com/okian/pitchduel/pkg/metrics"
)

// Supported database/sql drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed schema.sql
var schema string

const upsertStanding = `
INSERT INTO standings (player_id, username, wins, games_played, last_played)
VALUES (?, ?, ?, 1, ?)
ON CONFLICT (player_id) DO UPDATE SET
	username = excluded.username,
	wins = standings.wins + excluded.wins,
	games_played = standings.games_played + 1,
	last_played = CASE WHEN excluded.last_played > standings.last_played
		THEN excluded.last_played ELSE standings.last_played END
`

const selectTop = `
SELECT player_id, username, wins, games_played, last_played
FROM standings
ORDER BY wins DESC, games_played ASC, player_id ASC
LIMIT ?
`

const selectPlayer = `
SELECT player_id, username, wins, games_played, last_played
FROM standings
WHERE player_id = ?
`

const countAhead = `
SELECT COUNT(*) FROM standings
WHERE wins > ?
	OR (wins = ? AND games_played < ?)
	OR (wins = ? AND games_played = ? AND player_id < ?)
`

// SQLStore persists standings through database/sql on SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQLStore opens dsn with driver, checks the connection and applies the
// schema.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("standings dsn is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer avoids SQLITE_BUSY and keeps :memory: databases shared.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordResult implements Store.RecordResult in a single transaction.
func (s *SQLStore) RecordResult(ctx context.Context, r model.MatchResult) error {
	start := time.Now()
	defer s.observe("record", start)

	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	ts := r.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.rebind(upsertStanding)
	for _, p := range []struct{ id, name string }{
		{r.Player1ID, r.Player1Name},
		{r.Player2ID, r.Player2Name},
	} {
		won := 0
		if p.id == r.WinnerID {
			won = 1
		}
		if _, err := tx.ExecContext(ctx, q, p.id, p.name, won, ts.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("upsert standing %s: %w", p.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Top implements Store.Top.
func (s *SQLStore) Top(ctx context.Context, n int) ([]model.Standing, error) {
	start := time.Now()
	defer s.observe("top", start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(selectTop), n)
	if err != nil {
		return nil, fmt.Errorf("query top: %w", err)
	}
	defer rows.Close()

	out := make([]model.Standing, 0, n)
	for rows.Next() {
		st, err := scanStanding(rows)
		if err != nil {
			return nil, err
		}
		st.Rank = len(out) + 1
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top: %w", err)
	}
	return out, nil
}

// Player implements Store.Player.
func (s *SQLStore) Player(ctx context.Context, playerID string) (model.Standing, error) {
	start := time.Now()
	defer s.observe("player", start)

	st, err := scanStanding(s.db.QueryRowContext(ctx, s.rebind(selectPlayer), playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Standing{}, ErrPlayerNotFound
	}
	if err != nil {
		return model.Standing{}, err
	}

	var ahead int
	err = s.db.QueryRowContext(ctx, s.rebind(countAhead),
		st.Wins,
		st.Wins, st.GamesPlayed,
		st.Wins, st.GamesPlayed, st.PlayerID,
	).Scan(&ahead)
	if err != nil {
		return model.Standing{}, fmt.Errorf("rank %s: %w", playerID, err)
	}
	st.Rank = ahead + 1
	return st, nil
}

// Count returns the number of players, or 0 when the query fails.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM standings").Scan(&n); err != nil {
		return 0
	}
	return n
}

func (s *SQLStore) observe(op string, start time.Time) {
	metrics.RecordStandingsLatency(s.driver, op, float64(time.Since(start).Microseconds())/1000)
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStanding(row rowScanner) (model.Standing, error) {
	var (
		st     model.Standing
		lastMs int64
	)
	if err := row.Scan(&st.PlayerID, &st.Username, &st.Wins, &st.GamesPlayed, &lastMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Standing{}, err
		}
		return model.Standing{}, fmt.Errorf("scan standing: %w", err)
	}
	st.LastPlayed = time.UnixMilli(lastMs).UTC()
	return st, nil
}
