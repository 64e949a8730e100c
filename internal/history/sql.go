package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenSqlite opens (creating if needed) a local sqlite database.
func OpenSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

// OpenLibsql opens a remote libSQL database, authToken may be empty.
func OpenLibsql(url, authToken string) (*sql.DB, error) {
	dsn := url
	if authToken != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "authToken=" + authToken
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

// SQL stores the history as one row per entry, plus a marker row recording
// that the store was initialized.
type SQL struct {
	db *sql.DB
}

// NewSQL applies the schema to db and returns a Backend on top of it.
func NewSQL(ctx context.Context, db *sql.DB) (SQL, error) {
	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return SQL{}, fmt.Errorf("apply schema: %w", err)
		}
	}
	return SQL{db: db}, nil
}

func (s SQL) Read(ctx context.Context) ([][]int, bool, error) {
	var markers int
	err := s.db.QueryRowContext(ctx, "select count(*) from snapshot_store").Scan(&markers)
	if err != nil {
		return nil, false, err
	}
	if markers == 0 {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, "select counters from snapshot_entry order by position asc")
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	entries := [][]int{}
	for rows.Next() {
		var encoded string
		err := rows.Scan(&encoded)
		if err != nil {
			return nil, false, err
		}
		var counters []int
		err = json.Unmarshal([]byte(encoded), &counters)
		if err != nil {
			return nil, false, fmt.Errorf("parse entry: %w", err)
		}
		entries = append(entries, counters)
	}
	return entries, true, rows.Err()
}

func (s SQL) Write(ctx context.Context, entries [][]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "insert or ignore into snapshot_store (id) values (1)")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "delete from snapshot_entry")
	if err != nil {
		return err
	}
	for i, counters := range entries {
		encoded, err := json.Marshal(counters)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(
			ctx,
			"insert into snapshot_entry (position, counters) values (?, ?)",
			i, string(encoded),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s SQL) Close() error {
	return s.db.Close()
}
