// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package store

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/camwatch/internal/config"
)

func setupTestSettings(t *testing.T) *Settings {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open BadgerDB: %v", err)
	}
	s := NewFromDB(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings_UnsetReadsEmpty(t *testing.T) {
	s := setupTestSettings(t)

	endpoint, err := s.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	if endpoint != "" {
		t.Errorf("Endpoint() = %q, want empty", endpoint)
	}
	apiHost, err := s.APIHost()
	if err != nil {
		t.Fatalf("APIHost() error = %v", err)
	}
	if apiHost != "" {
		t.Errorf("APIHost() = %q, want empty", apiHost)
	}
}

func TestSettings_KeysAreIndependent(t *testing.T) {
	s := setupTestSettings(t)

	if err := s.SetEndpoint("10.0.0.5"); err != nil {
		t.Fatalf("SetEndpoint() error = %v", err)
	}
	if err := s.SetAPIHost("10.0.0.6"); err != nil {
		t.Fatalf("SetAPIHost() error = %v", err)
	}

	endpoint, apiHost, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if endpoint != "10.0.0.5" || apiHost != "10.0.0.6" {
		t.Errorf("Snapshot() = (%q, %q), want (10.0.0.5, 10.0.0.6)", endpoint, apiHost)
	}
}

func TestSettings_LastWriteWins(t *testing.T) {
	s := setupTestSettings(t)

	for _, host := range []string{"10.0.0.1", "10.0.0.2", " 10.0.0.3 "} {
		if err := s.SetEndpoint(host); err != nil {
			t.Fatalf("SetEndpoint(%q) error = %v", host, err)
		}
	}
	got, _ := s.Endpoint()
	if got != "10.0.0.3" {
		t.Errorf("Endpoint() = %q, want 10.0.0.3", got)
	}

	if err := s.SetEndpoint(""); err != nil {
		t.Fatalf("SetEndpoint(\"\") error = %v", err)
	}
	got, _ = s.Endpoint()
	if got != "" {
		t.Errorf("Endpoint() after clear = %q, want empty", got)
	}
}

func TestSettings_Seed(t *testing.T) {
	s := setupTestSettings(t)

	if err := s.SetAPIHost("10.0.0.9"); err != nil {
		t.Fatalf("SetAPIHost() error = %v", err)
	}

	seeded, err := s.Seed("10.0.0.5", "10.0.0.6")
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !slices.Equal(seeded, []string{KeyEndpoint}) {
		t.Errorf("Seed() seeded = %v, want [%s]", seeded, KeyEndpoint)
	}

	endpoint, apiHost, _ := s.Snapshot()
	if endpoint != "10.0.0.5" {
		t.Errorf("endpoint = %q, want seeded 10.0.0.5", endpoint)
	}
	if apiHost != "10.0.0.9" {
		t.Errorf("apiHost = %q, want existing 10.0.0.9", apiHost)
	}

	seeded, err = s.Seed("10.0.0.7", "")
	if err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if len(seeded) != 0 {
		t.Errorf("second Seed() seeded = %v, want none", seeded)
	}
}

func TestSettings_ConcurrentAccess(t *testing.T) {
	s := setupTestSettings(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.SetEndpoint("10.0.0.5"); err != nil {
				t.Errorf("SetEndpoint() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Endpoint(); err != nil {
				t.Errorf("Endpoint() error = %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestSettings_Closed(t *testing.T) {
	s := setupTestSettings(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := s.Endpoint(); !errors.Is(err, ErrClosed) {
		t.Errorf("Endpoint() after Close error = %v, want ErrClosed", err)
	}
	if err := s.SetAPIHost("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetAPIHost() after Close error = %v, want ErrClosed", err)
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetEndpoint("10.0.0.5"); err != nil {
		t.Fatalf("SetEndpoint() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint() error = %v", err)
	}
	if got != "10.0.0.5" {
		t.Errorf("Endpoint() after reopen = %q, want 10.0.0.5", got)
	}
}

func TestSettings_RunGC(t *testing.T) {
	t.Run("in memory is a no-op", func(t *testing.T) {
		s := setupTestSettings(t)
		if err := s.RunGC(); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})

	t.Run("on disk with nothing to reclaim", func(t *testing.T) {
		s, err := Open(config.StoreConfig{Path: t.TempDir()})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()
		for i := 0; i < 10; i++ {
			if err := s.SetAPIHost("10.0.0.9"); err != nil {
				t.Fatalf("SetAPIHost() error = %v", err)
			}
		}
		if err := s.RunGC(); err != nil {
			t.Errorf("RunGC() error = %v", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		s := setupTestSettings(t)
		s.Close()
		if err := s.RunGC(); !errors.Is(err, ErrClosed) {
			t.Errorf("RunGC() after Close error = %v, want ErrClosed", err)
		}
	})
}
