package bolt

import (
	"path/filepath"
	"testing"

	backendtesting "github.com/ValentinKolb/okv/lib/backend/testing"
	"github.com/ValentinKolb/okv/lib/offchain"
)

func factory(t testing.TB) offchain.Backend {
	b, err := Open(filepath.Join(t.TempDir(), "offchain.db"))
	if err != nil {
		t.Fatalf("Failed to open bolt backend: %v", err)
	}
	return b
}

func Test(t *testing.T) {
	backendtesting.RunBackendTests(t, "Bolt", factory)
	backendtesting.RunReopenTests(t, "Bolt", Open)
}

func Benchmark(b *testing.B) {
	backendtesting.RunBackendBenchmarks(b, "Bolt", factory)
}
