// Package testing provides a conformance suite for offchain.Backend implementations.
//
// Every backend calls RunBackendTests from its own _test.go file:
//
//	func Test(t *testing.T) {
//		backendtesting.RunBackendTests(t, "Memory", func(t testing.TB) offchain.Backend {
//			return NewMemoryBackend()
//		})
//	}
//
// Backends storing data on disk additionally call RunReopenTests.
package testing
