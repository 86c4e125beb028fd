package lexicon

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lexicon (
	word TEXT NOT NULL,
	canonical TEXT NOT NULL,
	rank INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (word, canonical)
);
CREATE INDEX IF NOT EXISTS idx_lexicon_word ON lexicon(word);
`

// SQLiteDictionary serves canonical forms from a lexicon table.
// Lower rank wins.
type SQLiteDictionary struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the dictionary at path. ":memory:" works for
// tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDictionary, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon db: %w", err)
	}
	// One connection: keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init lexicon schema: %w", err)
	}
	return &SQLiteDictionary{db: db}, nil
}

// Add inserts or re-ranks one word -> canonical pair.
func (d *SQLiteDictionary) Add(ctx context.Context, word, canonical string, rank int) error {
	word = strings.ToLower(strings.TrimSpace(word))
	canonical = strings.TrimSpace(canonical)
	if word == "" || canonical == "" {
		return fmt.Errorf("lexicon entry needs word and canonical form")
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO lexicon (word, canonical, rank) VALUES (?, ?, ?)
		 ON CONFLICT(word, canonical) DO UPDATE SET rank = excluded.rank`,
		word, canonical, rank)
	return err
}

func (d *SQLiteDictionary) LookupCanonicalForms(ctx context.Context, word string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT canonical FROM lexicon WHERE word = ? ORDER BY rank, canonical`,
		strings.ToLower(word))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		forms = append(forms, c)
	}
	return forms, rows.Err()
}

func (d *SQLiteDictionary) Close() error {
	return d.db.Close()
}
