// Camwatch - Home Security Camera Manager and Motion Alerts
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/camwatch

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/camwatch/internal/config"
	"github.com/tomtom215/camwatch/internal/logging"
)

// Setting keys. The names are shared with the Pi tooling and must not change.
const (
	KeyEndpoint = "serverIp"
	KeyAPIHost  = "raspberry_ip"
)

// keyPrefix namespaces settings inside the Badger keyspace.
const keyPrefix = "settings:"

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("settings store is closed")

// Settings is the persisted key-value store for the Pi addresses.
//
// Writes are last-write-wins; there are no multi-key transactions. An unset
// key reads as the empty string.
type Settings struct {
	db *badger.DB
}

// Open opens the settings store described by cfg.
//
// Example:
//
//	settings, err := store.Open(cfg.Store)
//	if err != nil {
//	    return err
//	}
//	defer settings.Close()
func Open(cfg config.StoreConfig) (*Settings, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = true
		opts.ValueLogFileSize = 16 << 20
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Settings store opened")
	return &Settings{db: db}, nil
}

// NewFromDB wraps an existing BadgerDB connection.
func NewFromDB(db *badger.DB) *Settings {
	return &Settings{db: db}
}

// Close releases the underlying database.
func (s *Settings) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Endpoint returns the motion-alert host (key serverIp).
func (s *Settings) Endpoint() (string, error) {
	return s.get(KeyEndpoint)
}

// SetEndpoint replaces the motion-alert host.
func (s *Settings) SetEndpoint(host string) error {
	return s.set(KeyEndpoint, host)
}

// APIHost returns the REST API host (key raspberry_ip).
func (s *Settings) APIHost() (string, error) {
	return s.get(KeyAPIHost)
}

// SetAPIHost replaces the REST API host.
func (s *Settings) SetAPIHost(host string) error {
	return s.set(KeyAPIHost, host)
}

// Snapshot returns both hosts read in one transaction.
func (s *Settings) Snapshot() (endpoint, apiHost string, err error) {
	if s.db.IsClosed() {
		return "", "", ErrClosed
	}
	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		if endpoint, err = readString(txn, KeyEndpoint); err != nil {
			return err
		}
		apiHost, err = readString(txn, KeyAPIHost)
		return err
	})
	return endpoint, apiHost, err
}

// Seed stores endpoint and apiHost for keys that have no value yet. Empty
// arguments are skipped. It reports which keys were written.
func (s *Settings) Seed(endpoint, apiHost string) (seeded []string, err error) {
	if s.db.IsClosed() {
		return nil, ErrClosed
	}
	seeds := []struct{ key, value string }{
		{KeyEndpoint, endpoint},
		{KeyAPIHost, apiHost},
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, seed := range seeds {
			if strings.TrimSpace(seed.value) == "" {
				continue
			}
			current, err := readString(txn, seed.key)
			if err != nil {
				return err
			}
			if current != "" {
				continue
			}
			if err := txn.Set(storageKey(seed.key), []byte(strings.TrimSpace(seed.value))); err != nil {
				return fmt.Errorf("seed %s: %w", seed.key, err)
			}
			seeded = append(seeded, seed.key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}

// gcDiscardRatio is the fraction of a value log file that must be garbage
// before Badger rewrites it.
const gcDiscardRatio = 0.5

// RunGC reclaims value log space until Badger finds nothing left to rewrite.
// It is a no-op for in-memory stores.
func (s *Settings) RunGC() error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			return nil
		default:
			return fmt.Errorf("value log gc: %w", err)
		}
	}
}

func (s *Settings) get(key string) (string, error) {
	if s.db.IsClosed() {
		return "", ErrClosed
	}
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = readString(txn, key)
		return err
	})
	return value, err
}

// set writes value, or deletes the key when value is blank.
func (s *Settings) set(key, value string) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	value = strings.TrimSpace(value)
	return s.db.Update(func(txn *badger.Txn) error {
		if value == "" {
			if err := txn.Delete(storageKey(key)); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			return nil
		}
		if err := txn.Set(storageKey(key), []byte(value)); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

func readString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get(storageKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(val), nil
}

func storageKey(key string) []byte {
	return []byte(keyPrefix + key)
}
