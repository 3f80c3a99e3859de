package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keshon/zoomer-grok/datastore"
	"github.com/keshon/zoomer-grok/internal/mind"
)

const ledgerKey = "ledger"

// Storage persists bot state in the JSON datastore.
type Storage struct {
	ds *datastore.DataStore
}

// New opens the datastore at filePath.
func New(filePath string, log zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log.With().Str("component", "datastore").Logger()
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// LoadLedger returns every progress record. A missing ledger is empty, not an error.
func (s *Storage) LoadLedger() (map[string]mind.ProgressRecord, error) {
	records := map[string]mind.ProgressRecord{}
	if _, err := s.ds.Get(ledgerKey, &records); err != nil {
		return nil, fmt.Errorf("error unmarshalling ledger: %w", err)
	}
	if records == nil {
		records = map[string]mind.ProgressRecord{}
	}
	return records, nil
}

// SaveLedger replaces the ledger and writes it to disk.
func (s *Storage) SaveLedger(records map[string]mind.ProgressRecord) error {
	if err := s.ds.Put(ledgerKey, records); err != nil {
		return err
	}
	return s.ds.SaveToFile()
}
