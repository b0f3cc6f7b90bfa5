package ingestor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEligible(t *testing.T) {
	cases := map[string]bool{
		"a.xlsx": true, "a.xls": true, "a.csv": true, "a.pdf": true,
		"a.docx": false, "a.txt": false,
	}
	for name, want := range cases {
		if got := Eligible(name); got != want {
			t.Errorf("Eligible(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIngestCSVAndCacheRoundtrip(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	source := filepath.Join(dir, "proveedor.csv")
	content := "Taladro 1/2,17.684,21\nMaza 500g,864,05\n"
	if err := os.WriteFile(source, []byte(content), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	res, err := Ingest(context.Background(), source, cacheDir)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res == nil {
		t.Fatalf("expected a result, got nil")
	}
	if res.Supplier != "proveedor" {
		t.Errorf("expected supplier=proveedor, got %q", res.Supplier)
	}
	if len(res.Table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Table))
	}

	cachePath := filepath.Join(cacheDir, "proveedor.gob")
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file to exist: %v", err)
	}

	// Re-ingest: the cache file written above is now newer than the
	// source, so this should be served from cache rather than re-read.
	res2, err := Ingest(context.Background(), source, cacheDir)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if len(res2.Table) != 2 {
		t.Fatalf("expected cached table with 2 rows, got %d", len(res2.Table))
	}
}

func TestIngestRejectsNonPriceTable(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "basura.csv")
	if err := os.WriteFile(source, []byte("a,b\nc,d\n"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	res, err := Ingest(context.Background(), source, filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result for non-price table, got %+v", res)
	}
}

func TestIngestUsesManualMappingSidecar(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "proveedor2.csv")
	content := "header,ignored,ignored\n1001,Martillo de bola,1.234,56\n"
	if err := os.WriteFile(source, []byte(content), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	sidecar := source + ".json"
	mapping := `{"col_producto":1,"col_precio":2,"col_codigo":0,"skip_rows":1}`
	if err := os.WriteFile(sidecar, []byte(mapping), 0644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	res, err := Ingest(context.Background(), source, filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res == nil || len(res.Table) == 0 {
		t.Fatalf("expected a non-empty table using manual mapping, got %+v", res)
	}
}
