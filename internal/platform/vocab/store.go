// Package vocab persists learned header aliases so that spelling
// variants discovered in one deployment survive restarts and can be
// shared across instances.
package vocab

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notecore/notecore/internal/note"
)

// Alias is one learned mapping from a free-text header spelling to a
// canonical section name.
type Alias struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}

// Store reads and writes the header_aliases table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// LoadAliases returns every learned alias, ordered by alias text for
// deterministic output.
func (s *Store) LoadAliases(ctx context.Context) ([]Alias, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT alias, canonical FROM header_aliases ORDER BY alias`)
	if err != nil {
		return nil, fmt.Errorf("query header aliases: %w", err)
	}
	defer rows.Close()

	var aliases []Alias
	for rows.Next() {
		var a Alias
		if err := rows.Scan(&a.Alias, &a.Canonical); err != nil {
			return nil, fmt.Errorf("scan header alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate header aliases: %w", err)
	}

	return aliases, nil
}

// SaveAlias upserts a single learned alias. An alias already mapped to a
// different canonical section keeps its original mapping; first writer
// wins so concurrent learners cannot flip established vocabulary.
func (s *Store) SaveAlias(ctx context.Context, alias, canonical string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO header_aliases (alias, canonical) VALUES ($1, $2)
         ON CONFLICT (alias) DO NOTHING`,
		alias, canonical)
	if err != nil {
		return fmt.Errorf("save header alias %q: %w", alias, err)
	}
	return nil
}

// SaveAll upserts a batch of learned aliases and returns how many were
// attempted. Individual conflicts are not errors.
func (s *Store) SaveAll(ctx context.Context, learned map[string]string) (int, error) {
	n := 0
	for alias, canonical := range learned {
		if err := s.SaveAlias(ctx, alias, canonical); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Count returns the number of stored aliases.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM header_aliases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count header aliases: %w", err)
	}
	return n, nil
}

// MergeIntoConfig loads all stored aliases and registers them on the
// given header config. Returns the number of aliases loaded.
func (s *Store) MergeIntoConfig(ctx context.Context, cfg *note.HeaderConfig) (int, error) {
	aliases, err := s.LoadAliases(ctx)
	if err != nil {
		return 0, err
	}
	Merge(cfg, aliases)
	return len(aliases), nil
}

// Merge registers a slice of aliases on a header config. Split out from
// MergeIntoConfig so the merge semantics are testable without a
// database.
func Merge(cfg *note.HeaderConfig, aliases []Alias) {
	for _, a := range aliases {
		cfg.AddAlias(a.Canonical, a.Alias)
	}
}
