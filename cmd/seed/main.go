// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the demo user already exists.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"community-platform/backend/internal/config"
	"community-platform/backend/internal/db"
)

// Fixed IDs so reruns are no-ops and local clients can hardcode them.
const (
	demoClerkID   = "user_demo_local_001"
	demoUserID    = "6b1f8f9e-0000-4000-8000-000000000001"
	demoGroupID   = "6b1f8f9e-0000-4000-8000-000000000002"
	demoChannelID = "6b1f8f9e-0000-4000-8000-000000000003"
	demoChannel2  = "6b1f8f9e-0000-4000-8000-000000000004"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var existing string
	err = sqlDB.QueryRowContext(ctx, `SELECT id FROM users WHERE clerk_id = $1`, demoClerkID).Scan(&existing)
	if err == nil {
		log.Printf("seed: demo user %s already present, nothing to do", existing)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("seed: checking demo user: %v", err)
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		log.Fatalf("seed: begin: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, clerk_id, firstname, lastname, image) VALUES ($1, $2, $3, $4, $5)`,
		demoUserID, demoClerkID, "Demo", "User", "",
	); err != nil {
		log.Fatalf("seed: insert user: %v", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO groups (id, user_id, name) VALUES ($1, $2, $3)`,
		demoGroupID, demoUserID, "demo-community",
	); err != nil {
		log.Fatalf("seed: insert group: %v", err)
	}

	// Two channels with ordered timestamps so the first-created one is the
	// stable routing target.
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO channels (id, group_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		demoChannelID, demoGroupID, "general", now,
	); err != nil {
		log.Fatalf("seed: insert channel: %v", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO channels (id, group_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		demoChannel2, demoGroupID, "announcements", now.Add(time.Second),
	); err != nil {
		log.Fatalf("seed: insert channel: %v", err)
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("seed: commit: %v", err)
	}
	log.Printf("seed: created demo user %s with group %s", demoUserID, demoGroupID)
}
