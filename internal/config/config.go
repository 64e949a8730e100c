package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"casewatch/internal/history"
	"casewatch/internal/scrapers/casepage"
	"casewatch/lib/configutil"
)

const DefaultName = "config.json5"

type Page struct {
	Url              string `json:"url"`
	Host             string `json:"host"`
	UserAgent        string `json:"user_agent"`
	Timeout          string `json:"timeout"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
}

type Links struct {
	Board    string `json:"board"`
	Movement string `json:"movement"`
}

type Shortener struct {
	Url          string `json:"url"`
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type Notify struct {
	Url   string `json:"url"`
	Token string `json:"token"`
}

type Config struct {
	Page      Page           `json:"page"`
	Links     Links          `json:"links"`
	Shortener Shortener      `json:"shortener"`
	Notify    Notify         `json:"notify"`
	Store     history.Config `json:"store"`
	// Timezone is an IANA name, "" means the local timezone.
	Timezone string `json:"timezone"`
}

func Defaults() Config {
	return Config{
		Page: Page{
			UserAgent: casepage.DefaultUserAgent,
			Timeout:   "30s",
		},
		// the path is left to history.Open, which picks a default per driver
		Store: history.Config{
			Driver: history.DriverJSON,
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Page.Url == "" {
		errs = append(errs, fmt.Errorf("page.url is required"))
	}
	if c.Page.Host == "" {
		errs = append(errs, fmt.Errorf("page.host is required"))
	}
	if c.Notify.Url == "" {
		errs = append(errs, fmt.Errorf("notify.url is required"))
	}
	if c.Notify.Token == "" {
		errs = append(errs, fmt.Errorf("notify.token is required"))
	}
	if _, err := c.PageTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	switch c.Store.Driver {
	case history.DriverJSON, history.DriverSqlite:
	case history.DriverLibsql:
		if c.Store.Url == "" {
			errs = append(errs, fmt.Errorf("store.url is required for the libsql driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of json, sqlite, libsql", c.Store.Driver))
	}
	return errors.Join(errs...)
}

// PageTimeout parses page.timeout, an empty value means 30 seconds.
func (c Config) PageTimeout() (time.Duration, error) {
	if c.Page.Timeout == "" {
		return 30 * time.Second, nil
	}
	timeout, err := time.ParseDuration(c.Page.Timeout)
	if err != nil {
		return 0, fmt.Errorf("page.timeout: %w", err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("page.timeout must be positive")
	}
	return timeout, nil
}

// Read reads `name` (and its local override) relative to workdir.
func Read(workdir, name string) (Config, error) {
	if name == "" {
		name = DefaultName
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(workdir, name)
	}
	return configutil.ReadConfigWithDefaults(name, Defaults())
}
