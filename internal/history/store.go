package history

import (
	"context"
	"fmt"

	"casewatch/internal/components/assert"
	"casewatch/internal/components/telemetry"
)

const (
	report_store_load     = "store.load"
	report_store_truncate = "store.truncate"
	report_store_save     = "store.save"
)

// Backend persists the raw history entries.
type Backend interface {
	// Read returns found=false when no history has ever been written.
	Read(ctx context.Context) (entries [][]int, found bool, err error)
	// Write replaces the persisted history with entries.
	Write(ctx context.Context, entries [][]int) error
	Close() error
}

type Store struct {
	backend Backend
	tel     telemetry.API
}

func NewStore(backend Backend, tel telemetry.API) *Store {
	assert.NotNil(backend, "backend")
	assert.NotNil(tel, "telemetry")

	return &Store{
		backend: backend,
		tel:     telemetry.NewScopedAPI("history", tel),
	}
}

// Read returns the persisted history without modifying anything, found is
// false if nothing was ever persisted.
func (s *Store) Read(ctx context.Context) (History, bool, error) {
	entries, found, err := s.backend.Read(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_load, err)
		return History{}, false, fmt.Errorf("read history: %w", err)
	}
	h := History{Entries: entries}
	if len(h.Entries) > MaxEntries {
		s.tel.ReportWarning(report_store_truncate, len(h.Entries))
		h = h.truncated()
	}
	return h, found, nil
}

// Load returns the persisted history. When nothing was ever persisted it
// writes an empty history and returns bootstrapped=true.
func (s *Store) Load(ctx context.Context) (History, bool, error) {
	h, found, err := s.Read(ctx)
	if err != nil {
		return History{}, false, err
	}
	if found {
		s.tel.ReportDebug("loaded history", len(h.Entries))
		return h, false, nil
	}

	s.tel.ReportDebug("first loading, writing empty history")
	err = s.Save(ctx, History{})
	if err != nil {
		return History{}, false, err
	}
	return History{}, true, nil
}

// Save overwrites the persisted history.
func (s *Store) Save(ctx context.Context, h History) error {
	h = h.truncated()
	entries := h.Entries
	if entries == nil {
		entries = [][]int{}
	}
	err := s.backend.Write(ctx, entries)
	if err != nil {
		s.tel.ReportBroken(report_store_save, err)
		return fmt.Errorf("save history: %w", err)
	}
	s.tel.ReportDebug("saved history", len(entries))
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}
