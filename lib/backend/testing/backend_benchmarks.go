package testing

import (
	"fmt"
	"testing"

	"github.com/ValentinKolb/okv/lib/offchain"
)

// RunBackendBenchmarks runs the benchmarks for a backend implementation.
// The backend is used from a single goroutine, as it is behind offchain.SharedStorage in production.
func RunBackendBenchmarks(b *testing.B, name string, factory BackendFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Set", func(b *testing.B) {
			benchmarkSet(b, factory(b))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory(b))
		})

		b.Run("Remove", func(b *testing.B) {
			benchmarkRemove(b, factory(b))
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

func benchmarkSet(b *testing.B, backend offchain.Backend) {
	b.Cleanup(func() {
		backend.Close()
	})

	value := []byte("test-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.Set(offchain.StoragePrefix, []byte(fmt.Sprintf("key-%d", i%1000)), value)
	}
}

func benchmarkGet(b *testing.B, backend offchain.Backend) {
	b.Cleanup(func() {
		backend.Close()
	})

	for i := 0; i < 1000; i++ {
		backend.Set(offchain.StoragePrefix, []byte(fmt.Sprintf("key-%d", i)), []byte("test-value"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.Get(offchain.StoragePrefix, []byte(fmt.Sprintf("key-%d", i%1000)))
	}
}

func benchmarkRemove(b *testing.B, backend offchain.Backend) {
	b.Cleanup(func() {
		backend.Close()
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		b.StopTimer()
		backend.Set(offchain.StoragePrefix, key, []byte("test-value"))
		b.StartTimer()
		backend.Remove(offchain.StoragePrefix, key)
	}
}
