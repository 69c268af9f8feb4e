package state

import (
	"context"
	"errors"
	"strings"

	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

// Store is the persistence API used by the scheduler.
//
// Load must return an empty (never nil) document when nothing has been
// persisted yet. Save replaces the whole durable document atomically.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	Close() error
}

// Open initializes the configured store.
// An empty or "none" driver yields an in-memory store (no durability).
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "none":
		log.Warn("state persistence disabled; debounce baselines reset on restart")
		return &memStore{}, nil
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "mongo", "mongodb":
		return openMongo(cfg, log)
	default:
		return nil, errors.New("unknown state driver: " + driver)
	}
}

// memStore satisfies Store without durability; used when persistence is off
// and by scheduler tests.
type memStore struct {
	doc *Document
}

func (s *memStore) Load(ctx context.Context) (*Document, error) {
	_ = ctx
	if s.doc == nil {
		return NewDocument(), nil
	}
	return s.doc, nil
}

func (s *memStore) Save(ctx context.Context, doc *Document) error {
	_ = ctx
	s.doc = doc
	return nil
}

func (s *memStore) Close() error { return nil }
