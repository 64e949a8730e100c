package history

import (
	"context"
	"fmt"
	"path/filepath"
)

const (
	DriverJSON   = "json"
	DriverSqlite = "sqlite"
	DriverLibsql = "libsql"
)

type Config struct {
	Driver    string `json:"driver"`
	Path      string `json:"path"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// Open creates the Backend described by config, relative paths are resolved
// against workdir.
func Open(ctx context.Context, config Config, workdir string) (Backend, error) {
	path := config.Path
	if path != "" && path != ":memory:" && !filepath.IsAbs(path) {
		path = filepath.Join(workdir, path)
	}

	switch config.Driver {
	case "", DriverJSON:
		if path == "" {
			path = filepath.Join(workdir, "data.json")
		}
		return NewJSONFile(path), nil
	case DriverSqlite:
		if path == "" {
			path = filepath.Join(workdir, "data.db")
		}
		db, err := OpenSqlite(path)
		if err != nil {
			return nil, err
		}
		backend, err := NewSQL(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return backend, nil
	case DriverLibsql:
		if config.Url == "" {
			return nil, fmt.Errorf("store: libsql driver requires a url")
		}
		db, err := OpenLibsql(config.Url, config.AuthToken)
		if err != nil {
			return nil, err
		}
		backend, err := NewSQL(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", config.Driver)
	}
}
