package registrymigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating participants and matches tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS matches (
					id INTEGER PRIMARY KEY CHECK (id >= 0),
					kind VARCHAR(16) NOT NULL,
					state VARCHAR(16) NOT NULL,
					channel_id VARCHAR(32) NOT NULL,
					roster JSONB NOT NULL DEFAULT '[]',
					problems JSONB NOT NULL DEFAULT '[]',
					scores JSONB,
					point_values JSONB,
					created_at TIMESTAMPTZ NOT NULL,
					duration_ns BIGINT NOT NULL,
					announcement_id VARCHAR(64),
					winner_id VARCHAR(32),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create matches table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participants (
					user_id VARCHAR(32) PRIMARY KEY,
					handle VARCHAR(64) NOT NULL,
					challenge_score INTEGER NOT NULL DEFAULT 0,
					challenge JSONB,
					match_id INTEGER,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_handle ON participants (LOWER(handle));
				CREATE INDEX IF NOT EXISTS idx_participants_match_id ON participants (match_id) WHERE match_id IS NOT NULL;
			`); err != nil {
				return fmt.Errorf("failed to create participants table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping participants and matches tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS participants;`); err != nil {
				return fmt.Errorf("failed to drop participants table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS matches;`); err != nil {
				return fmt.Errorf("failed to drop matches table: %w", err)
			}
			return nil
		})
	})
}
