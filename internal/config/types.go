// Package config loads and validates the monitor's configuration file
// (JSON or YAML) and watches it for product-list changes.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThePeze/BershkaStockMonitor/internal/fetch"
	"github.com/ThePeze/BershkaStockMonitor/internal/model"
	"github.com/ThePeze/BershkaStockMonitor/internal/monitor"
	"github.com/ThePeze/BershkaStockMonitor/internal/notify"
	"github.com/ThePeze/BershkaStockMonitor/internal/state"
	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

type Config struct {
	Bershka  BershkaConfig  `json:"bershka"`
	Polling  PollingConfig  `json:"polling,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	State    StateConfig    `json:"state,omitempty"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
	Summary  SummaryConfig  `json:"summary,omitempty"`
	Watch    WatchConfig    `json:"watch,omitempty"`

	Products []model.Product `json:"products"`
}

// BershkaConfig identifies the shop front the stock endpoint is scoped to.
type BershkaConfig struct {
	StoreID    int `json:"store_id"`
	CatalogID  int `json:"catalog_id"`
	LanguageID int `json:"language_id,omitempty"` // default -1 (shop default)
	AppID      int `json:"app_id,omitempty"`      // default 1

	// BaseURL overrides the production host; used by tests.
	BaseURL string `json:"base_url,omitempty"`
}

// PollingConfig holds the cycle/debounce/backoff knobs, all in seconds to
// keep the file format plain.
//
// Defaults (when fields are omitted/zero):
//   - interval_seconds: 180
//   - jitter_seconds: 30
//   - per_product_delay_seconds: 2
//   - timeout_seconds: 20
//   - confirm_count: 2
//   - suppress_initial_notifications: true
//   - backoff_base_seconds: 10
//   - backoff_max_seconds: 600
//   - reset_errors_on_start: false (backoff pressure survives restarts)
type PollingConfig struct {
	IntervalSeconds int `json:"interval_seconds,omitempty"`

	// JitterSeconds and PerProductDelaySeconds are pointers so an explicit 0
	// (no jitter, no pause between products) can be told apart from an
	// omitted field.
	JitterSeconds          *int `json:"jitter_seconds,omitempty"`
	PerProductDelaySeconds *int `json:"per_product_delay_seconds,omitempty"`

	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	ConfirmCount int `json:"confirm_count,omitempty"`

	// SuppressInitialNotifications is a pointer so an explicit false can be
	// told apart from an omitted field.
	SuppressInitialNotifications *bool `json:"suppress_initial_notifications,omitempty"`

	BackoffBaseSeconds int `json:"backoff_base_seconds,omitempty"`
	BackoffMaxSeconds  int `json:"backoff_max_seconds,omitempty"`

	ResetErrorsOnStart bool `json:"reset_errors_on_start,omitempty"`
}

type TelegramConfig struct {
	Enabled    bool   `json:"enabled"`
	BotToken   string `json:"bot_token,omitempty"`
	ChatID     int64  `json:"chat_id,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"` // default 1
}

// StateConfig controls where the debounce/error state document lives.
//
// Example:
//
//	"state": { "driver": "file", "path": "./state.json" }
type StateConfig struct {
	Driver     string `json:"driver,omitempty"` // file|sqlite|mongo|none; default file
	Path       string `json:"path,omitempty"`   // default ./state.json
	URI        string `json:"uri,omitempty"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console *bool             `json:"console,omitempty"` // default true
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// SummaryConfig controls the optional periodic status message.
type SummaryConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"` // cron spec; default "0 9 * * *"
}

// WatchConfig enables hot-reload of this file; the scheduler adopts the
// new product list at the next cycle boundary.
type WatchConfig struct {
	Enabled bool `json:"enabled"`
}

// Validate fails fast on anything the monitor cannot start with.
func (c *Config) Validate() error {
	if c.Bershka.StoreID <= 0 {
		return errors.New("bershka.store_id is required")
	}
	if c.Bershka.CatalogID <= 0 {
		return errors.New("bershka.catalog_id is required")
	}
	if len(c.Products) == 0 {
		return errors.New("at least one product is required")
	}
	for i, p := range c.Products {
		if p.ProductID <= 0 {
			return fmt.Errorf("products[%d]: product_id is required", i)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("products[%d]: title is required", i)
		}
		if len(p.Checks) == 0 {
			return fmt.Errorf("products[%d] (%s): at least one size check is required", i, p.Title)
		}
		for j, ch := range p.Checks {
			if ch.SizeID <= 0 {
				return fmt.Errorf("products[%d].checks[%d]: size_id is required", i, j)
			}
			if strings.TrimSpace(ch.SizeLabel) == "" {
				return fmt.Errorf("products[%d].checks[%d]: size_label is required", i, j)
			}
		}
	}
	if c.Telegram.Enabled {
		if strings.TrimSpace(c.Telegram.BotToken) == "" {
			return errors.New("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func seconds(v, def int) time.Duration {
	if v <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(v) * time.Second
}

// FetchConfig maps the file values onto the stock client.
func (c *Config) FetchConfig() fetch.Config {
	appID := c.Bershka.AppID
	if appID == 0 {
		appID = 1
	}
	languageID := c.Bershka.LanguageID
	if languageID == 0 {
		languageID = -1
	}
	return fetch.Config{
		StoreID:    c.Bershka.StoreID,
		CatalogID:  c.Bershka.CatalogID,
		LanguageID: languageID,
		AppID:      appID,
		BaseURL:    c.Bershka.BaseURL,
		Timeout:    seconds(c.Polling.TimeoutSeconds, 20),
	}
}

// MonitorOptions maps the polling section onto the scheduler.
func (c *Config) MonitorOptions() monitor.Options {
	suppress := true
	if c.Polling.SuppressInitialNotifications != nil {
		suppress = *c.Polling.SuppressInitialNotifications
	}
	confirm := c.Polling.ConfirmCount
	if confirm < 1 {
		confirm = 2
	}
	jitter := 30 * time.Second
	if c.Polling.JitterSeconds != nil {
		jitter = time.Duration(*c.Polling.JitterSeconds) * time.Second
	}
	perProduct := 2 * time.Second
	if c.Polling.PerProductDelaySeconds != nil {
		perProduct = time.Duration(*c.Polling.PerProductDelaySeconds) * time.Second
	}
	return monitor.Options{
		Interval:           seconds(c.Polling.IntervalSeconds, 180),
		Jitter:             jitter,
		PerProductDelay:    perProduct,
		ConfirmCount:       confirm,
		SuppressInitial:    suppress,
		BackoffBase:        seconds(c.Polling.BackoffBaseSeconds, 10),
		BackoffMax:         seconds(c.Polling.BackoffMaxSeconds, 600),
		ResetErrorsOnStart: c.Polling.ResetErrorsOnStart,
	}
}

// StoreConfig maps the state section onto the store layer.
func (c *Config) StoreConfig() state.Config {
	driver := strings.TrimSpace(c.State.Driver)
	if driver == "" {
		driver = "file"
	}
	path := strings.TrimSpace(c.State.Path)
	if path == "" {
		path = "./state.json"
	}
	return state.Config{
		Driver:     driver,
		Path:       path,
		URI:        c.State.URI,
		Database:   c.State.Database,
		Collection: c.State.Collection,
	}
}

// TelegramOptions maps the telegram section onto the notifier.
func (c *Config) TelegramOptions() notify.TelegramConfig {
	return notify.TelegramConfig{
		Token:      c.Telegram.BotToken,
		ChatID:     c.Telegram.ChatID,
		RatePerSec: c.Telegram.RatePerSec,
	}
}

// LogConfig maps the logging section onto logx.
func (c *Config) LogConfig() logx.Config {
	console := true
	if c.Logging.Console != nil {
		console = *c.Logging.Console
	}
	return logx.Config{
		Level:   c.Logging.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}

// SummarySchedule returns the cron spec for the status summary.
func (c *Config) SummarySchedule() string {
	s := strings.TrimSpace(c.Summary.Schedule)
	if s == "" {
		return "0 9 * * *"
	}
	return s
}
