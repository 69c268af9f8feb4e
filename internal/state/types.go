package state

import (
	"strconv"
	"time"

	"github.com/ThePeze/BershkaStockMonitor/internal/model"
)

// Config configures state persistence.
//
// Driver values:
//   - "file": JSON document on disk, atomically replaced on every flush
//   - "sqlite": single-row SQLite table
//   - "mongo": single-document MongoDB collection
//
// If Driver is empty or "none", state lives in memory only and is lost on exit.
type Config struct {
	Driver string
	Path   string // file, sqlite

	URI        string // mongo
	Database   string // mongo; default "stockmon"
	Collection string // mongo; default "monitor_state"

	ConnectTimeout time.Duration // mongo only; 0 means default
}

// SizeRecord is the debounce record for one product x size.
// Created lazily on first observation; never evicted (tracked size sets
// are small and static).
type SizeRecord struct {
	LastSeen    *model.NormalizedStatus `json:"last_seen,omitempty"`
	SeenStreak  int                     `json:"seen_streak"`
	LastEmitted *model.NormalizedStatus `json:"last_emitted,omitempty"`
}

// ProductState carries the consecutive-failure count for a product and the
// debounce records of its tracked sizes, keyed by size id.
type ProductState struct {
	ErrorCount int                    `json:"error_count,omitempty"`
	Sizes      map[string]*SizeRecord `json:"sizes,omitempty"`
}

// Document is the whole persisted state: product id -> ProductState.
// Keys are decimal strings so the JSON shape is stable across drivers.
type Document struct {
	Products map[string]*ProductState `json:"products"`
}

func NewDocument() *Document {
	return &Document{Products: map[string]*ProductState{}}
}

// Product returns the state for productID, creating it if needed.
func (d *Document) Product(productID int) *ProductState {
	if d.Products == nil {
		d.Products = map[string]*ProductState{}
	}
	key := strconv.Itoa(productID)
	p := d.Products[key]
	if p == nil {
		p = &ProductState{}
		d.Products[key] = p
	}
	return p
}

// Lookup returns the state for productID, or nil when the product has never
// been polled. Unlike Product it never mutates the document, so concurrent
// readers can use it while the polling loop serializes the document.
func (d *Document) Lookup(productID int) *ProductState {
	if d == nil {
		return nil
	}
	return d.Products[strconv.Itoa(productID)]
}

// Lookup returns the debounce record for sizeID without creating it.
func (p *ProductState) Lookup(sizeID int) *SizeRecord {
	if p == nil {
		return nil
	}
	return p.Sizes[strconv.Itoa(sizeID)]
}

// Size returns the debounce record for sizeID, creating it if needed.
func (p *ProductState) Size(sizeID int) *SizeRecord {
	if p.Sizes == nil {
		p.Sizes = map[string]*SizeRecord{}
	}
	key := strconv.Itoa(sizeID)
	r := p.Sizes[key]
	if r == nil {
		r = &SizeRecord{}
		p.Sizes[key] = r
	}
	return r
}
