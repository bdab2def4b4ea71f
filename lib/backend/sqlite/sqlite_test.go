package sqlite

import (
	"path/filepath"
	"testing"

	backendtesting "github.com/ValentinKolb/okv/lib/backend/testing"
	"github.com/ValentinKolb/okv/lib/offchain"
)

func factory(t testing.TB) offchain.Backend {
	b, err := Open(filepath.Join(t.TempDir(), "offchain.sqlite"))
	if err != nil {
		t.Fatalf("Failed to open sqlite backend: %v", err)
	}
	return b
}

func Test(t *testing.T) {
	backendtesting.RunBackendTests(t, "SQLite", factory)
	backendtesting.RunReopenTests(t, "SQLite", Open)
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("   "); err == nil {
		t.Errorf("Expected error for empty path")
	}
}

func Benchmark(b *testing.B) {
	backendtesting.RunBackendBenchmarks(b, "SQLite", factory)
}
