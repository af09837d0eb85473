package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"
)

//go:embed sql/get-entry.sql
var getEntrySQL string

//go:embed sql/upsert-entry.sql
var upsertEntrySQL string

//go:embed sql/delete-entry.sql
var deleteEntrySQL string

//go:embed sql/delete-all.sql
var deleteAllSQL string

//go:embed sql/count-entries.sql
var countEntriesSQL string

// Entry is a raw weather backend body and the moment it was fetched.
type Entry struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
}

// PayloadRepository stores the last fetched backend body per cache key.
type PayloadRepository interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, body []byte, fetchedAt time.Time) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) PayloadRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		body       []byte
		fetchedStr string
	)
	err := r.db.QueryRowContext(ctx, getEntrySQL, key).Scan(&body, &fetchedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cache entry %q: %w", key, err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, fetchedStr)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse fetched_at %q for %q: %w", fetchedStr, key, err)
	}
	return Entry{Key: key, Body: body, FetchedAt: fetchedAt}, true, nil
}

func (r *repositoryImpl) Put(ctx context.Context, key string, body []byte, fetchedAt time.Time) error {
	if key == "" {
		return errors.New("empty cache key")
	}
	_, err := r.db.ExecContext(ctx, upsertEntrySQL, key, body, fetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put cache entry %q: %w", key, err)
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

func (r *repositoryImpl) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (r *repositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countEntriesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return n, nil
}
