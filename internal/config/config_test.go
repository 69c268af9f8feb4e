package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const yamlConfig = `
bershka:
  store_id: 45109565
  catalog_id: 40259535
polling:
  interval_seconds: 120
  confirm_count: 3
  suppress_initial_notifications: false
telegram:
  enabled: true
  bot_token: "123456:TEST"
  chat_id: 987654321
state:
  driver: sqlite
  path: ./state.db
summary:
  enabled: true
products:
  - title: "Oversize denim jacket"
    url: "https://www.bershka.com/de/p/111222.html"
    product_id: 111222
    checks:
      - size_label: "M"
        size_id: 333444
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", yamlConfig))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	opts := cfg.MonitorOptions()
	if opts.Interval != 120*time.Second {
		t.Fatalf("interval = %v, want 120s", opts.Interval)
	}
	if opts.ConfirmCount != 3 {
		t.Fatalf("confirm_count = %d, want 3", opts.ConfirmCount)
	}
	if opts.SuppressInitial {
		t.Fatalf("explicit false for suppress_initial_notifications was ignored")
	}
	// Omitted knobs fall back to documented defaults.
	if opts.Jitter != 30*time.Second || opts.PerProductDelay != 2*time.Second {
		t.Fatalf("jitter/per-product defaults wrong: %v / %v", opts.Jitter, opts.PerProductDelay)
	}
	if opts.BackoffBase != 10*time.Second || opts.BackoffMax != 600*time.Second {
		t.Fatalf("backoff defaults wrong: %v / %v", opts.BackoffBase, opts.BackoffMax)
	}

	fc := cfg.FetchConfig()
	if fc.StoreID != 45109565 || fc.CatalogID != 40259535 {
		t.Fatalf("bershka ids wrong: %+v", fc)
	}
	if fc.LanguageID != -1 || fc.AppID != 1 {
		t.Fatalf("language/app defaults wrong: %+v", fc)
	}
	if fc.Timeout != 20*time.Second {
		t.Fatalf("timeout default wrong: %v", fc.Timeout)
	}

	sc := cfg.StoreConfig()
	if sc.Driver != "sqlite" || sc.Path != "./state.db" {
		t.Fatalf("state config wrong: %+v", sc)
	}

	if got := cfg.SummarySchedule(); got != "0 9 * * *" {
		t.Fatalf("summary schedule default wrong: %q", got)
	}

	if len(cfg.Products) != 1 || cfg.Products[0].Checks[0].SizeID != 333444 {
		t.Fatalf("products mangled: %+v", cfg.Products)
	}
}

func TestLoadJSON(t *testing.T) {
	const jsonConfig = `{
  "bershka": {"store_id": 1, "catalog_id": 2},
  "products": [
    {"title": "T", "product_id": 3, "checks": [{"size_label": "L", "size_id": 4}]}
  ]
}`
	m := NewManager(writeConfig(t, "config.json", jsonConfig))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := cfg.MonitorOptions()
	if !opts.SuppressInitial {
		t.Fatalf("suppress_initial must default to true when omitted")
	}
	if opts.Interval != 180*time.Second || opts.ConfirmCount != 2 {
		t.Fatalf("polling defaults wrong: %+v", opts)
	}
	if sc := cfg.StoreConfig(); sc.Driver != "file" || sc.Path != "./state.json" {
		t.Fatalf("state defaults wrong: %+v", sc)
	}
	if lc := cfg.LogConfig(); !lc.Console {
		t.Fatalf("console logging must default to true")
	}
}

func TestExplicitZeroPollingKnobs(t *testing.T) {
	content := strings.Replace(yamlConfig, "confirm_count: 3",
		"confirm_count: 3\n  jitter_seconds: 0\n  per_product_delay_seconds: 0", 1)
	m := NewManager(writeConfig(t, "config.yaml", content))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := cfg.MonitorOptions()
	if opts.Jitter != 0 {
		t.Fatalf("explicit jitter_seconds: 0 was coerced to %v", opts.Jitter)
	}
	if opts.PerProductDelay != 0 {
		t.Fatalf("explicit per_product_delay_seconds: 0 was coerced to %v", opts.PerProductDelay)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	bad := strings.Replace(yamlConfig, "polling:", "poling_typo: {}\npolling:", 1)
	m := NewManager(writeConfig(t, "config.yaml", bad))
	if _, err := m.Load(); err == nil {
		t.Fatalf("unknown top-level field must be rejected")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate string // applied to yamlConfig via strings.Replace
		with   string
		errSub string
	}{
		{"missing store", "store_id: 45109565", "store_id: 0", "store_id"},
		{"missing products", "products:", "ignored_products:", ""},
		{"missing token", `bot_token: "123456:TEST"`, `bot_token: ""`, "bot_token"},
		{"missing size label", `size_label: "M"`, `size_label: ""`, "size_label"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := strings.Replace(yamlConfig, tc.mutate, tc.with, 1)
			m := NewManager(writeConfig(t, "config.yaml", bad))
			_, err := m.Load()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if tc.errSub != "" && !strings.Contains(err.Error(), tc.errSub) {
				t.Fatalf("error %q does not mention %q", err, tc.errSub)
			}
		})
	}
}

func TestGetReturnsCommittedConfig(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", yamlConfig))
	if m.Get() != nil {
		t.Fatalf("Get before Load should be nil")
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Get() != cfg {
		t.Fatalf("Get should return the committed config")
	}
}
