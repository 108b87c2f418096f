package persist

import (
	"context"
	"fmt"
	"time"
)

// MatchRow is one player's standing at save time.
type MatchRow struct {
	PlayerName string
	Kills      uint32
	Deaths     uint32
	Points     uint32
}

// MatchEvent is one journaled combat event.
type MatchEvent struct {
	Type       string // "kill" or "pickup"
	ActorName  string
	TargetName string
	Points     uint32
	At         time.Time
}

type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// RecordStandings upserts the current standings in one transaction, so a
// crash mid-save never leaves a half-written scoreboard.
func (r *MatchRepo) RecordStandings(ctx context.Context, serverID int, rows []MatchRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("standings begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_standings (server_id, player_name, kills, deaths, points, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 ON CONFLICT (server_id, player_name)
			 DO UPDATE SET kills = $3, deaths = $4, points = $5, updated_at = NOW()`,
			serverID, row.PlayerName, row.Kills, row.Deaths, row.Points,
		); err != nil {
			return fmt.Errorf("standings upsert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// AppendEvents writes a batch of journal entries in a single transaction.
func (r *MatchRepo) AppendEvents(ctx context.Context, serverID int, events []MatchEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_events (server_id, event_type, actor_name, target_name, points, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			serverID, e.Type, e.ActorName, e.TargetName, e.Points, e.At,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// TopStandings returns the best standings recorded for a server.
func (r *MatchRepo) TopStandings(ctx context.Context, serverID, limit int) ([]MatchRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT player_name, kills, deaths, points
		 FROM match_standings WHERE server_id = $1
		 ORDER BY points DESC LIMIT $2`,
		serverID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var row MatchRow
		if err := rows.Scan(&row.PlayerName, &row.Kills, &row.Deaths, &row.Points); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
