package testing

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ValentinKolb/okv/lib/offchain"
)

// BackendFactory creates a new, empty instance of a backend.
// Resources like temp directories should be bound to t.
type BackendFactory func(t testing.TB) offchain.Backend

// OpenFunc opens a backend stored at path. Calling it twice with the same
// path (after closing the first instance) must yield the same content.
type OpenFunc func(path string) (offchain.Backend, error)

// RunBackendTests runs the conformance suite for a backend implementation.
func RunBackendTests(t *testing.T, name string, factory BackendFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory(t))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory(t))
		})

		t.Run("RemoveMissing", func(t *testing.T) {
			testRemoveMissing(t, factory(t))
		})

		t.Run("EmptyKeyAndValue", func(t *testing.T) {
			testEmptyKeyAndValue(t, factory(t))
		})

		t.Run("BinaryData", func(t *testing.T) {
			testBinaryData(t, factory(t))
		})

		t.Run("PrefixIsolation", func(t *testing.T) {
			testPrefixIsolation(t, factory(t))
		})

		t.Run("ValueCopy", func(t *testing.T) {
			testValueCopy(t, factory(t))
		})

		t.Run("ManyKeys", func(t *testing.T) {
			testManyKeys(t, factory(t))
		})
	})
}

// RunReopenTests checks that data written to a backend survives closing and reopening it.
func RunReopenTests(t *testing.T, name string, open OpenFunc) {
	t.Run(name, func(t *testing.T) {
		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, open)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustSet(t testing.TB, b offchain.Backend, prefix, key, value []byte) {
	t.Helper()
	if err := b.Set(prefix, key, value); err != nil {
		t.Fatalf("Set(%q, %q) failed: %v", prefix, key, err)
	}
}

func mustRemove(t testing.TB, b offchain.Backend, prefix, key []byte) {
	t.Helper()
	if err := b.Remove(prefix, key); err != nil {
		t.Fatalf("Remove(%q, %q) failed: %v", prefix, key, err)
	}
}

func expectValue(t testing.TB, b offchain.Backend, prefix, key, want []byte) {
	t.Helper()
	got, ok, err := b.Get(prefix, key)
	if err != nil {
		t.Fatalf("Get(%q, %q) failed: %v", prefix, key, err)
	}
	if !ok {
		t.Fatalf("Expected key %q to exist", key)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Expected value %q for key %q, got %q", want, key, got)
	}
}

func expectAbsent(t testing.TB, b offchain.Backend, prefix, key []byte) {
	t.Helper()
	got, ok, err := b.Get(prefix, key)
	if err != nil {
		t.Fatalf("Get(%q, %q) failed: %v", prefix, key, err)
	}
	if ok {
		t.Errorf("Expected key %q to be absent, got value %q", key, got)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix

	expectAbsent(t, b, prefix, []byte("test-key"))

	mustSet(t, b, prefix, []byte("test-key"), []byte("test-value"))
	expectValue(t, b, prefix, []byte("test-key"), []byte("test-value"))

	expectAbsent(t, b, prefix, []byte("nonexistent-key"))
}

func testOverwrite(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix
	key := []byte("test-key")

	mustSet(t, b, prefix, key, []byte("value-1"))
	mustSet(t, b, prefix, key, []byte("value-2"))
	expectValue(t, b, prefix, key, []byte("value-2"))

	// shorter value must not leave trailing bytes of the old one
	mustSet(t, b, prefix, key, []byte("v"))
	expectValue(t, b, prefix, key, []byte("v"))
}

func testRemove(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix
	key := []byte("test-key")

	mustSet(t, b, prefix, key, []byte("test-value"))
	mustSet(t, b, prefix, []byte("other-key"), []byte("other-value"))

	mustRemove(t, b, prefix, key)
	expectAbsent(t, b, prefix, key)

	// other keys are untouched
	expectValue(t, b, prefix, []byte("other-key"), []byte("other-value"))

	// set after remove works again
	mustSet(t, b, prefix, key, []byte("again"))
	expectValue(t, b, prefix, key, []byte("again"))
}

func testRemoveMissing(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix

	mustRemove(t, b, prefix, []byte("never-written"))
	expectAbsent(t, b, prefix, []byte("never-written"))

	// removing twice is fine
	mustSet(t, b, prefix, []byte("key"), []byte("value"))
	mustRemove(t, b, prefix, []byte("key"))
	mustRemove(t, b, prefix, []byte("key"))
	expectAbsent(t, b, prefix, []byte("key"))
}

func testEmptyKeyAndValue(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix

	// empty key
	mustSet(t, b, prefix, []byte{}, []byte("empty-key-value"))
	expectValue(t, b, prefix, []byte{}, []byte("empty-key-value"))
	expectValue(t, b, prefix, nil, []byte("empty-key-value"))

	// empty value is stored and distinguishable from absent
	mustSet(t, b, prefix, []byte("empty-value"), []byte{})
	got, ok, err := b.Get(prefix, []byte("empty-value"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatalf("Expected empty value to be present")
	}
	if len(got) != 0 {
		t.Errorf("Expected empty value, got %q", got)
	}

	mustRemove(t, b, prefix, []byte{})
	expectAbsent(t, b, prefix, []byte{})
}

func testBinaryData(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix

	key := []byte{0x00, 0xff, 0x00, 0x01, 0xfe}
	value := make([]byte, 256)
	for i := range value {
		value[i] = byte(i)
	}

	mustSet(t, b, prefix, key, value)
	expectValue(t, b, prefix, key, value)

	// key differing only in a trailing zero byte is a different key
	expectAbsent(t, b, prefix, append(append([]byte{}, key...), 0x00))
}

func testPrefixIsolation(t *testing.T, b offchain.Backend) {
	defer b.Close()

	// ("ab", "c") and ("a", "bc") must not collide
	mustSet(t, b, []byte("ab"), []byte("c"), []byte("first"))
	mustSet(t, b, []byte("a"), []byte("bc"), []byte("second"))

	expectValue(t, b, []byte("ab"), []byte("c"), []byte("first"))
	expectValue(t, b, []byte("a"), []byte("bc"), []byte("second"))

	mustRemove(t, b, []byte("a"), []byte("bc"))
	expectValue(t, b, []byte("ab"), []byte("c"), []byte("first"))

	expectAbsent(t, b, offchain.StoragePrefix, []byte("c"))
}

func testValueCopy(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix
	key := []byte("test-key")

	value := []byte("original")
	mustSet(t, b, prefix, key, value)

	// modify the input after Set
	value[0] = 'X'
	expectValue(t, b, prefix, key, []byte("original"))

	// modify the output of Get
	got, _, err := b.Get(prefix, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got[0] = 'Y'
	expectValue(t, b, prefix, key, []byte("original"))
}

func testManyKeys(t *testing.T, b offchain.Backend) {
	defer b.Close()

	prefix := offchain.StoragePrefix
	const n = 500

	for i := 0; i < n; i++ {
		mustSet(t, b, prefix, []byte(fmt.Sprintf("key-%d", i)), []byte(fmt.Sprintf("value-%d", i)))
	}

	for i := 0; i < n; i += 2 {
		mustRemove(t, b, prefix, []byte(fmt.Sprintf("key-%d", i)))
	}

	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		if i%2 == 0 {
			expectAbsent(t, b, prefix, key)
		} else {
			expectValue(t, b, prefix, key, []byte(fmt.Sprintf("value-%d", i)))
		}
	}
}

func testReopen(t *testing.T, open OpenFunc) {
	path := t.TempDir() + "/data"
	prefix := offchain.StoragePrefix

	b, err := open(path)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}

	mustSet(t, b, prefix, []byte("kept"), []byte("value"))
	mustSet(t, b, prefix, []byte("removed"), []byte("value"))
	mustSet(t, b, prefix, []byte("empty"), []byte{})
	mustRemove(t, b, prefix, []byte("removed"))

	if err := b.Close(); err != nil {
		t.Fatalf("Failed to close backend: %v", err)
	}

	b, err = open(path)
	if err != nil {
		t.Fatalf("Failed to reopen backend: %v", err)
	}
	defer b.Close()

	expectValue(t, b, prefix, []byte("kept"), []byte("value"))
	expectValue(t, b, prefix, []byte("empty"), []byte{})
	expectAbsent(t, b, prefix, []byte("removed"))
}
