package memory

import (
	"testing"

	backendtesting "github.com/ValentinKolb/okv/lib/backend/testing"
	"github.com/ValentinKolb/okv/lib/offchain"
)

func Test(t *testing.T) {
	backendtesting.RunBackendTests(t, "Memory", func(t testing.TB) offchain.Backend {
		return NewMemoryBackend()
	})
}

func Benchmark(b *testing.B) {
	backendtesting.RunBackendBenchmarks(b, "Memory", func(t testing.TB) offchain.Backend {
		return NewMemoryBackend()
	})
}
