package registrydb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/uptrace/bun"
)

// Impl implements registry.Store using Bun ORM.
type Impl struct {
	db  bun.IDB
	now func() time.Time
}

// NewStore creates a new Postgres-backed registry store.
func NewStore(db bun.IDB) registry.Store {
	return &Impl{db: db, now: time.Now}
}

// Load reads every participant and match.
func (r *Impl) Load(ctx context.Context) (registry.State, error) {
	var participants []*ParticipantRow
	if err := r.db.NewSelect().
		Model(&participants).
		Order("user_id ASC").
		Scan(ctx); err != nil {
		return registry.State{}, fmt.Errorf("failed to load participants: %w", err)
	}

	var matches []*MatchRow
	if err := r.db.NewSelect().
		Model(&matches).
		Order("id ASC").
		Scan(ctx); err != nil {
		return registry.State{}, fmt.Errorf("failed to load matches: %w", err)
	}

	return fromRows(participants, matches), nil
}

// Save replaces the stored snapshot with state in one transaction: present
// rows are upserted and absent rows deleted.
func (r *Impl) Save(ctx context.Context, state registry.State) error {
	participants, matches := toRows(state, r.now())

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := saveParticipants(ctx, tx, participants); err != nil {
			return err
		}
		return saveMatches(ctx, tx, matches)
	})
}

func saveParticipants(ctx context.Context, tx bun.Tx, rows []*ParticipantRow) error {
	del := tx.NewDelete().Model((*ParticipantRow)(nil))
	if len(rows) == 0 {
		del = del.Where("TRUE")
	} else {
		ids := make([]string, len(rows))
		for i, row := range rows {
			ids[i] = row.UserID
		}
		del = del.Where("user_id NOT IN (?)", bun.In(ids))
	}
	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune participants: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.NewInsert().
		Model(&rows).
		On("CONFLICT (user_id) DO UPDATE").
		Set("handle = EXCLUDED.handle").
		Set("challenge_score = EXCLUDED.challenge_score").
		Set("challenge = EXCLUDED.challenge").
		Set("match_id = EXCLUDED.match_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert participants: %w", err)
	}
	return nil
}

func saveMatches(ctx context.Context, tx bun.Tx, rows []*MatchRow) error {
	del := tx.NewDelete().Model((*MatchRow)(nil))
	if len(rows) == 0 {
		del = del.Where("TRUE")
	} else {
		ids := make([]int, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		del = del.Where("id NOT IN (?)", bun.In(ids))
	}
	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune matches: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("state = EXCLUDED.state").
		Set("channel_id = EXCLUDED.channel_id").
		Set("roster = EXCLUDED.roster").
		Set("problems = EXCLUDED.problems").
		Set("scores = EXCLUDED.scores").
		Set("point_values = EXCLUDED.point_values").
		Set("created_at = EXCLUDED.created_at").
		Set("duration_ns = EXCLUDED.duration_ns").
		Set("announcement_id = EXCLUDED.announcement_id").
		Set("winner_id = EXCLUDED.winner_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert matches: %w", err)
	}
	return nil
}
