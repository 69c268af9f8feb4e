package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ThePeze/BershkaStockMonitor/internal/model"
	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	// Fresh database reads back as an empty document.
	doc, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(doc.Products) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}

	if err := st.Save(ctx, sampleDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Second save must replace, not accumulate.
	updated := sampleDoc()
	updated.Product(112233).ErrorCount = 0
	if err := st.Save(ctx, updated); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ps := got.Products["112233"]
	if ps == nil || ps.ErrorCount != 0 {
		t.Fatalf("expected replaced document, got %+v", ps)
	}
	rec := ps.Sizes["42"]
	if rec == nil || rec.LastSeen == nil || rec.LastSeen.Status != model.StatusAvailable {
		t.Fatalf("size record mangled: %+v", rec)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	st, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Save(ctx, sampleDoc()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	doc, err := st2.Load(ctx)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if doc.Products["112233"] == nil {
		t.Fatalf("document lost across reopen")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	if _, err := Open(Config{Driver: "sqlite"}, logx.Nop()); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
