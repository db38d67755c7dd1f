package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (s *Store) CreateWorkspace(ctx context.Context, ws *Workspace) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO workspaces (id, name, slug, api_token_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		ws.ID, ws.Name, ws.Slug, ws.APITokenHash,
	)
	if err := row.Scan(&ws.CreatedAt); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (s *Store) WorkspaceByTokenHash(ctx context.Context, tokenHash string) (Workspace, error) {
	var ws Workspace
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, api_token_hash, created_at
		FROM workspaces
		WHERE api_token_hash = $1`,
		tokenHash,
	)
	if err := row.Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.APITokenHash, &ws.CreatedAt); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

func (s *Store) WorkspaceByID(ctx context.Context, id uuid.UUID) (Workspace, error) {
	var ws Workspace
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, api_token_hash, created_at
		FROM workspaces
		WHERE id = $1`,
		id,
	)
	if err := row.Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.APITokenHash, &ws.CreatedAt); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}
