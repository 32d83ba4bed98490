// Package store persists documents and serves reimbursement queries from
// PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dgallion1/jarbas/internal/document"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL of the tables this package reads and writes.
//
//go:embed schema.sql
var Schema string

const documentsTable = "documents"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DBInterface is the subset of pgxpool.Pool used by the repositories.
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Connect opens a connection pool and checks it is reachable, waiting with
// Backoff while the server is still starting.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := ping(ctx, pool.Ping, Backoff); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Documents is the append-only document repository.
type Documents struct {
	db DBInterface
}

func NewDocuments(db DBInterface) *Documents {
	return &Documents{db: db}
}

// Count returns the number of persisted documents.
func (s *Documents) Count(ctx context.Context) (int64, error) {
	query, args, err := squirrel.Select("count(*)").
		From(documentsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var n int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// BulkInsert writes docs with a single COPY, so a batch commits or fails
// as a whole.
func (s *Documents) BulkInsert(ctx context.Context, docs []document.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	src := pgx.CopyFromSlice(len(docs), func(i int) ([]any, error) {
		return docs[i].Values(), nil
	})
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{documentsTable}, document.Columns, src)
	if err != nil {
		return 0, fmt.Errorf("copying %d documents: %w", len(docs), err)
	}
	return n, nil
}

// DeleteAll removes every document and returns how many were deleted.
func (s *Documents) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := squirrel.Delete(documentsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building delete query: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting documents: %w", err)
	}
	return tag.RowsAffected(), nil
}
