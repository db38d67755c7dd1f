package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/feedgrid-platform/api/internal/auth"
)

// Seeds a local workspace and prints its API token once. Re-running keeps
// the workspace and rotates the token.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	slug := envOrDefault("SEED_WORKSPACE_SLUG", "local-dev")
	name := envOrDefault("SEED_WORKSPACE_NAME", "Local Dev Workspace")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	token, err := auth.GenerateToken()
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}

	var workspaceID uuid.UUID
	if err := pool.QueryRow(ctx, `
		INSERT INTO workspaces (slug, name, api_token_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, api_token_hash = EXCLUDED.api_token_hash
		RETURNING id
	`, slug, name, auth.HashToken(token)).Scan(&workspaceID); err != nil {
		log.Fatalf("upsert workspace: %v", err)
	}

	fieldSeeds := []struct {
		key      string
		name     string
		datatype string
		order    int32
	}{
		{"title", "Title", "text", 0},
		{"price", "Price", "number", 1},
		{"in_stock", "In stock", "bool", 2},
		{"category", "Category", "text", 3},
	}
	for _, f := range fieldSeeds {
		if _, err := pool.Exec(ctx, `
			INSERT INTO custom_fields (workspace_id, key, name, datatype, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (workspace_id, key) DO NOTHING
		`, workspaceID, f.key, f.name, f.datatype, f.order); err != nil {
			log.Fatalf("seed custom field %q: %v", f.key, err)
		}
	}

	fmt.Printf("workspace %s (%s)\napi token: %s\n", slug, workspaceID, token)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
