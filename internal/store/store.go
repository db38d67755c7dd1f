// Package store is the hand-written pgx query layer. Every query filters by
// workspace_id so a workspace can never read or write another workspace's rows.
package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}
