package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
)

// PostgresStore persists documents in a Postgres table. Line buffers are
// stored newline-joined; the version column guards against downgrades.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a store to the database at url.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the documents table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL DEFAULT '',
			language      TEXT NOT NULL DEFAULT '',
			content       TEXT NOT NULL DEFAULT '',
			version       INTEGER NOT NULL DEFAULT 0,
			last_modified TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, d *doc.Document) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, language, content, version, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		d.ID, d.Title, d.Language, d.Text(), d.Version, d.LastModified)
	if err != nil {
		return fmt.Errorf("insert document %s: %w", d.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*doc.Document, error) {
	d := &doc.Document{ID: id}
	var content string
	err := s.pool.QueryRow(ctx, `
		SELECT title, language, content, version, last_modified
		FROM documents WHERE id = $1`, id).
		Scan(&d.Title, &d.Language, &content, &d.Version, &d.LastModified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", id, err)
	}
	d.Content = strings.Split(content, "\n")
	return d, nil
}

func (s *PostgresStore) Save(ctx context.Context, d *doc.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (id, title, language, content, version, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    language = EXCLUDED.language,
		    content = EXCLUDED.content,
		    version = EXCLUDED.version,
		    last_modified = EXCLUDED.last_modified
		WHERE documents.version <= EXCLUDED.version`,
		d.ID, d.Title, d.Language, d.Text(), d.Version, d.LastModified)
	if err != nil {
		return fmt.Errorf("save document %s: %w", d.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
