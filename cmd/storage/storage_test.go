package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestParseImport(t *testing.T) {
	t.Run("Entries", func(t *testing.T) {
		entries, err := parseImport(strings.NewReader("- key: foo\n  value: bar\n- key: baz\n  value: \"\"\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Key != "foo" || entries[0].Value != "bar" {
			t.Errorf("unexpected first entry: %+v", entries[0])
		}
		if entries[1].Key != "baz" || entries[1].Value != "" {
			t.Errorf("unexpected second entry: %+v", entries[1])
		}
	})

	t.Run("Empty", func(t *testing.T) {
		entries, err := parseImport(strings.NewReader(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		if _, err := parseImport(strings.NewReader("- value: bar\n")); err == nil {
			t.Error("expected error for entry without key")
		}
	})

	t.Run("NotAList", func(t *testing.T) {
		if _, err := parseImport(strings.NewReader("key: foo\n")); err == nil {
			t.Error("expected error for a mapping document")
		}
	})
}

func TestFormatValue(t *testing.T) {
	if got := formatValue([]byte("hello"), false); got != "hello" {
		t.Errorf("expected hello, got %q", got)
	}
	if got := formatValue([]byte{0xde, 0xad}, true); got != "0xdead" {
		t.Errorf("expected 0xdead, got %q", got)
	}
	if got := formatValue(nil, true); got != "0x" {
		t.Errorf("expected 0x, got %q", got)
	}
}

func TestRunBenchmark(t *testing.T) {
	var calls atomic.Int64
	res := runBenchmark(context.Background(), "test", 4, 100, func(_ context.Context, i int) error {
		calls.Add(1)
		if i%10 == 0 {
			return errors.New("failed")
		}
		return nil
	})

	if calls.Load() != 100 {
		t.Errorf("expected 100 calls, got %d", calls.Load())
	}
	if res.timer.Count() != 100 {
		t.Errorf("expected 100 timed operations, got %d", res.timer.Count())
	}
	if res.errors.Count() != 10 {
		t.Errorf("expected 10 errors, got %d", res.errors.Count())
	}
}

func TestPerfKeys(t *testing.T) {
	old := perfKeySpread
	perfKeySpread = 5
	defer func() { perfKeySpread = old }()

	keys := perfKeys("run")
	if len(keys) != 5 {
		t.Fatalf("expected 5 keys, got %d", len(keys))
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		if !strings.HasPrefix(string(k), perfKeyPrefix+"/run/") {
			t.Errorf("unexpected key %q", k)
		}
		seen[string(k)] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected distinct keys, got %d", len(seen))
	}
}

func TestWriteResultsToCSV(t *testing.T) {
	res := runBenchmark(context.Background(), "set", 2, 10, func(context.Context, int) error { return nil })
	path := filepath.Join(t.TempDir(), "results.csv")

	if err := writeResultsToCSV(path, "run", []*perfResult{res}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	if records[1][0] != "run" || records[1][1] != "set" || records[1][5] != "10" {
		t.Errorf("unexpected row: %v", records[1])
	}
}
