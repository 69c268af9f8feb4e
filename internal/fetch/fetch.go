// Package fetch talks to the Bershka itxrest stock endpoint and normalizes
// raw per-size entries into the status values the monitor debounces.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.bershka.com"

// Config identifies the fetch target. Store/catalog/language/app ids are
// shop-front parameters of the itxrest API.
type Config struct {
	StoreID    int
	CatalogID  int
	LanguageID int // -1 means shop default
	AppID      int

	BaseURL string        // override for tests; default production host
	Timeout time.Duration // per-request bound; default 20s
}

// Snapshot is the raw stock response: per-product blocks, each with
// per-size entries.
type Snapshot struct {
	Stocks []ProductStock `json:"stocks"`
}

type ProductStock struct {
	ProductID int         `json:"productId"`
	Stocks    []SizeStock `json:"stocks"`
}

// SizeStock is one per-size entry. TypeThreshold carries the low-stock
// marker when the shop reports scarcity.
type SizeStock struct {
	ID            int    `json:"id"`
	Availability  string `json:"availability"`
	TypeThreshold string `json:"typeThreshold,omitempty"`
}

// FindEntry returns the entry for (productID, sizeID), or ok=false when the
// snapshot has no matching entry (e.g. a discontinued size). Absence is not
// an error; the caller skips the size for the cycle.
func (s *Snapshot) FindEntry(productID, sizeID int) (SizeStock, bool) {
	if s == nil {
		return SizeStock{}, false
	}
	for _, block := range s.Stocks {
		if block.ProductID != productID {
			continue
		}
		for _, entry := range block.Stocks {
			if entry.ID == sizeID {
				return entry, true
			}
		}
	}
	return SizeStock{}, false
}

// Client fetches stock snapshots over one long-lived HTTP client so the
// whole run reuses connections.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// StockURL builds the itxrest stock endpoint for one product.
func (c *Client) StockURL(productID int) string {
	return fmt.Sprintf("%s/itxrest/2/catalog/store/%d/%d/product/%d/stock?languageId=%d&appId=%d",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		c.cfg.StoreID, c.cfg.CatalogID, productID, c.cfg.LanguageID, c.cfg.AppID)
}

// Fetch retrieves the raw stock snapshot for one product. Any transport,
// HTTP-status or decode failure is returned as an error; the caller's
// backoff controller owns recovery.
func (c *Client) Fetch(ctx context.Context, productID int) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StockURL(productID), nil)
	if err != nil {
		return nil, err
	}
	// Shop fronts 403 obvious bots; present as a browser-ish client.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; bershka-personal-monitor/1.2)")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("stock fetch: unexpected status %d for product %d", resp.StatusCode, productID)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("stock fetch: decode: %w", err)
	}
	return &snap, nil
}
