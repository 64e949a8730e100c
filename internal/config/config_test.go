package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"casewatch/internal/history"

	"github.com/stretchr/testify/require"
)

const validConfig = `{
	// the page being watched
	page: {
		url: "https://example.com/bbs/list",
		host: "https://example.com",
	},
	links: {
		board: "https://example.com/board",
		movement: "https://example.com/move",
	},
	notify: {
		url: "https://notify.example.com/api/notify",
		token: "abc",
	},
	timezone: "Asia/Seoul",
}`

func TestRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(validConfig), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{ notify: { token: "local-token" }, store: { driver: "sqlite", path: "state.db" } }`),
		0o600,
	))

	cfg, err := Read(dir, "")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/bbs/list", cfg.Page.Url)
	require.Equal(t, "local-token", cfg.Notify.Token)
	require.Equal(t, "https://notify.example.com/api/notify", cfg.Notify.Url)
	require.Equal(t, history.DriverSqlite, cfg.Store.Driver)
	require.Equal(t, "state.db", cfg.Store.Path)
	require.NotEmpty(t, cfg.Page.UserAgent)

	timeout, err := cfg.PageTimeout()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, timeout)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(t.TempDir(), "")
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
		valid  bool
	}{
		{name: "complete", modify: func(c *Config) {}, valid: true},
		{name: "missing page url", modify: func(c *Config) { c.Page.Url = "" }},
		{name: "missing host", modify: func(c *Config) { c.Page.Host = "" }},
		{name: "missing notify url", modify: func(c *Config) { c.Notify.Url = "" }},
		{name: "missing token", modify: func(c *Config) { c.Notify.Token = "" }},
		{name: "bad timeout", modify: func(c *Config) { c.Page.Timeout = "soon" }},
		{name: "bad timezone", modify: func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{name: "unknown driver", modify: func(c *Config) { c.Store.Driver = "redis" }},
		{name: "libsql without url", modify: func(c *Config) { c.Store.Driver = history.DriverLibsql }},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Page.Url = "https://example.com"
			cfg.Page.Host = "https://example.com"
			cfg.Notify.Url = "https://notify.example.com"
			cfg.Notify.Token = "token"
			test.modify(&cfg)

			err := cfg.Validate()
			if test.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestReadDriverOnlyStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(validConfig), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{ store: { driver: "sqlite" } }`),
		0o600,
	))

	cfg, err := Read(dir, "")
	require.NoError(t, err)
	require.Equal(t, history.DriverSqlite, cfg.Store.Driver)
	require.Empty(t, cfg.Store.Path)

	backend, err := history.Open(context.Background(), cfg.Store, dir)
	require.NoError(t, err)
	defer backend.Close()

	_, err = os.Stat(filepath.Join(dir, "data.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data.json"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefaultStoreIsJSONFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(validConfig), 0o600))

	cfg, err := Read(dir, "")
	require.NoError(t, err)

	backend, err := history.Open(context.Background(), cfg.Store, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "data.json"), backend.(history.JSONFile).Path())
}
