package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// migration is a single versioned schema step.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_players",
		sql: `
			CREATE TABLE IF NOT EXISTS players (
				id              BIGINT PRIMARY KEY,
				name            TEXT NOT NULL,
				platform        SMALLINT NOT NULL DEFAULT 0,
				status          TEXT NOT NULL DEFAULT 'public',
				api_key         TEXT,
				claim_code_hash TEXT,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_players_status ON players(status);
		`,
	},
	{
		version: 2,
		name:    "create_player_names",
		sql: `
			CREATE TABLE IF NOT EXISTS player_names (
				player_id  BIGINT NOT NULL REFERENCES players(id),
				name       TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, name)
			);
		`,
	},
	{
		version: 3,
		name:    "create_games",
		sql: `
			CREATE TABLE IF NOT EXISTS games (
				timestamp      TIMESTAMPTZ NOT NULL,
				real_timestamp TIMESTAMPTZ,
				id_a           BIGINT NOT NULL,
				name_a         TEXT NOT NULL,
				char_a         SMALLINT NOT NULL,
				platform_a     SMALLINT NOT NULL DEFAULT 0,
				id_b           BIGINT NOT NULL,
				name_b         TEXT NOT NULL,
				char_b         SMALLINT NOT NULL,
				platform_b     SMALLINT NOT NULL DEFAULT 0,
				winner         SMALLINT NOT NULL,
				game_floor     SMALLINT NOT NULL DEFAULT 0,
				value_a        REAL,
				deviation_a    REAL,
				value_b        REAL,
				deviation_b    REAL,
				win_chance     REAL,
				PRIMARY KEY (timestamp, id_a, char_a, platform_a, id_b, char_b, platform_b)
			);

			CREATE INDEX IF NOT EXISTS idx_games_unrated
				ON games((COALESCE(real_timestamp, timestamp)))
				WHERE value_a IS NULL;

			CREATE INDEX IF NOT EXISTS idx_games_id_a ON games(id_a);
			CREATE INDEX IF NOT EXISTS idx_games_id_b ON games(id_b);
		`,
	},
	{
		version: 4,
		name:    "create_player_ratings",
		sql: `
			CREATE TABLE IF NOT EXISTS player_ratings (
				player_id  BIGINT NOT NULL REFERENCES players(id),
				char_id    SMALLINT NOT NULL,
				wins       INTEGER NOT NULL DEFAULT 0,
				losses     INTEGER NOT NULL DEFAULT 0,
				value      REAL NOT NULL DEFAULT 1500,
				deviation  REAL NOT NULL DEFAULT 250,
				last_decay TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (player_id, char_id)
			);

			CREATE INDEX IF NOT EXISTS idx_player_ratings_value
				ON player_ratings(value DESC);
		`,
	},
	{
		version: 5,
		name:    "create_ranks",
		sql: `
			CREATE TABLE IF NOT EXISTS global_ranks (
				rank      INTEGER PRIMARY KEY,
				player_id BIGINT NOT NULL,
				char_id   SMALLINT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS character_ranks (
				char_id   SMALLINT NOT NULL,
				rank      INTEGER NOT NULL,
				player_id BIGINT NOT NULL,
				PRIMARY KEY (char_id, rank)
			);
		`,
	},
}

// Migrator applies the embedded schema migrations in order.
type Migrator struct {
	conn   *Connection
	logger *slog.Logger
}

// NewMigrator creates a migrator.
func NewMigrator(conn *Connection, logger *slog.Logger) *Migrator {
	return &Migrator{conn: conn, logger: logger}
}

// Run applies all pending migrations. It is safe to call on every start.
func (m *Migrator) Run(ctx context.Context) error {
	if _, err := m.conn.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("%w: creating schema_migrations: %v", ErrMigrationFailed, err)
	}

	var current int
	if err := m.conn.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("%w: reading current version: %v", ErrMigrationFailed, err)
	}

	for _, mig := range migrations {
		if mig.version <= current {
			continue
		}

		m.logger.Info("applying migration",
			slog.Int("version", mig.version),
			slog.String("name", mig.name),
		)

		if err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.sql); err != nil {
				return fmt.Errorf("applying %s: %w", mig.name, err)
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.version, mig.name,
			)
			return err
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
		}
	}

	return nil
}
