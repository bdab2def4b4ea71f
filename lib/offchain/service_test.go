package offchain_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/okv/lib/backend/memory"
	"github.com/ValentinKolb/okv/lib/offchain"
)

var (
	allowAll = offchain.GateFunc(func(context.Context) error { return nil })
	denyAll  = offchain.GateFunc(func(context.Context) error { return offchain.ErrUnsafeRPCCalled })
)

// recordingBackend counts calls and can fail on demand
type recordingBackend struct {
	offchain.Backend
	calls atomic.Int64
	fail  error
}

func (r *recordingBackend) Get(prefix, key []byte) ([]byte, bool, error) {
	r.calls.Add(1)
	if r.fail != nil {
		return nil, false, r.fail
	}
	return r.Backend.Get(prefix, key)
}

func (r *recordingBackend) Set(prefix, key, value []byte) error {
	r.calls.Add(1)
	if r.fail != nil {
		return r.fail
	}
	return r.Backend.Set(prefix, key, value)
}

func (r *recordingBackend) Remove(prefix, key []byte) error {
	r.calls.Add(1)
	if r.fail != nil {
		return r.fail
	}
	return r.Backend.Remove(prefix, key)
}

func newRecording() *recordingBackend {
	return &recordingBackend{Backend: memory.NewMemoryBackend()}
}

func TestSetGetClear(t *testing.T) {
	service := offchain.NewOffchain(memory.NewMemoryBackend(), allowAll)
	ctx := context.Background()
	kind := offchain.StorageKindPersistent

	if _, ok, err := service.GetLocalStorage(ctx, kind, []byte("key")); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := service.SetLocalStorage(ctx, kind, []byte("key"), []byte("value")); err != nil {
		t.Fatalf("SetLocalStorage failed: %v", err)
	}

	value, ok, err := service.GetLocalStorage(ctx, kind, []byte("key"))
	if err != nil || !ok || !bytes.Equal(value, []byte("value")) {
		t.Fatalf("Expected value, got %q ok=%v err=%v", value, ok, err)
	}

	if err := service.SetLocalStorage(ctx, kind, []byte("key"), []byte("other")); err != nil {
		t.Fatalf("SetLocalStorage failed: %v", err)
	}
	value, _, _ = service.GetLocalStorage(ctx, kind, []byte("key"))
	if !bytes.Equal(value, []byte("other")) {
		t.Errorf("Expected overwritten value, got %q", value)
	}

	if err := service.ClearLocalStorage(ctx, kind, []byte("key")); err != nil {
		t.Fatalf("ClearLocalStorage failed: %v", err)
	}
	if _, ok, err := service.GetLocalStorage(ctx, kind, []byte("key")); err != nil || ok {
		t.Errorf("Expected key to be cleared, got ok=%v err=%v", ok, err)
	}

	// clearing a missing key is not an error
	if err := service.ClearLocalStorage(ctx, kind, []byte("never-set")); err != nil {
		t.Errorf("ClearLocalStorage of missing key failed: %v", err)
	}
}

func TestEmptyValueIsPresent(t *testing.T) {
	service := offchain.NewOffchain(memory.NewMemoryBackend(), allowAll)
	ctx := context.Background()

	if err := service.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"), []byte{}); err != nil {
		t.Fatalf("SetLocalStorage failed: %v", err)
	}
	value, ok, err := service.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"))
	if err != nil || !ok || len(value) != 0 {
		t.Errorf("Expected present empty value, got %q ok=%v err=%v", value, ok, err)
	}
}

func TestUsesStoragePrefix(t *testing.T) {
	backend := memory.NewMemoryBackend()
	service := offchain.NewOffchain(backend, allowAll)

	if err := service.SetLocalStorage(context.Background(), offchain.StorageKindPersistent, []byte("key"), []byte("value")); err != nil {
		t.Fatalf("SetLocalStorage failed: %v", err)
	}

	value, ok, err := backend.Get([]byte("storage"), []byte("key"))
	if err != nil || !ok || !bytes.Equal(value, []byte("value")) {
		t.Errorf("Expected value under prefix 'storage', got %q ok=%v err=%v", value, ok, err)
	}
}

func TestLocalKindUnavailable(t *testing.T) {
	backend := newRecording()
	service := offchain.NewOffchain(backend, allowAll)
	ctx := context.Background()

	for _, kind := range []offchain.StorageKind{offchain.StorageKindLocal, offchain.StorageKind(0), offchain.StorageKind(7)} {
		if err := service.SetLocalStorage(ctx, kind, []byte("k"), []byte("v")); !errors.Is(err, offchain.ErrUnavailableStorageKind) {
			t.Errorf("Set(%s): expected ErrUnavailableStorageKind, got %v", kind, err)
		}
		if err := service.ClearLocalStorage(ctx, kind, []byte("k")); !errors.Is(err, offchain.ErrUnavailableStorageKind) {
			t.Errorf("Clear(%s): expected ErrUnavailableStorageKind, got %v", kind, err)
		}
		if _, _, err := service.GetLocalStorage(ctx, kind, []byte("k")); !errors.Is(err, offchain.ErrUnavailableStorageKind) {
			t.Errorf("Get(%s): expected ErrUnavailableStorageKind, got %v", kind, err)
		}
	}

	if n := backend.calls.Load(); n != 0 {
		t.Errorf("Expected no backend calls, got %d", n)
	}
}

func TestGateDenied(t *testing.T) {
	backend := newRecording()
	service := offchain.NewOffchain(backend, denyAll)
	ctx := context.Background()

	// the gate is consulted before the kind, so LOCAL also reports the safety error
	for _, kind := range []offchain.StorageKind{offchain.StorageKindPersistent, offchain.StorageKindLocal} {
		if err := service.SetLocalStorage(ctx, kind, []byte("k"), []byte("v")); !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
			t.Errorf("Set(%s): expected ErrUnsafeRPCCalled, got %v", kind, err)
		}
		if err := service.ClearLocalStorage(ctx, kind, []byte("k")); !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
			t.Errorf("Clear(%s): expected ErrUnsafeRPCCalled, got %v", kind, err)
		}
		if _, _, err := service.GetLocalStorage(ctx, kind, []byte("k")); !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
			t.Errorf("Get(%s): expected ErrUnsafeRPCCalled, got %v", kind, err)
		}
	}

	if n := backend.calls.Load(); n != 0 {
		t.Errorf("Expected no backend calls, got %d", n)
	}
}

func TestNilGateDenies(t *testing.T) {
	service := offchain.NewOffchain(memory.NewMemoryBackend(), nil)
	if err := service.SetLocalStorage(context.Background(), offchain.StorageKindPersistent, []byte("k"), []byte("v")); !errors.Is(err, offchain.ErrUnsafeRPCCalled) {
		t.Errorf("Expected ErrUnsafeRPCCalled, got %v", err)
	}
}

func TestDeniedCallDoesNotChangeState(t *testing.T) {
	backend := memory.NewMemoryBackend()
	allowed := offchain.NewOffchain(backend, allowAll)
	denied := offchain.NewOffchain(backend, denyAll)
	ctx := context.Background()

	_ = allowed.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"), []byte("value"))
	_ = denied.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"), []byte("changed"))
	_ = denied.ClearLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"))

	value, ok, _ := allowed.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("key"))
	if !ok || !bytes.Equal(value, []byte("value")) {
		t.Errorf("Expected unchanged value, got %q ok=%v", value, ok)
	}
}

func TestBackendFailure(t *testing.T) {
	backend := newRecording()
	backend.fail = fmt.Errorf("disk on fire")
	service := offchain.NewOffchain(backend, allowAll)
	ctx := context.Background()

	err := service.SetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k"), []byte("v"))
	if !errors.Is(err, offchain.ErrBackend) {
		t.Errorf("Set: expected ErrBackend, got %v", err)
	}
	if !errors.Is(err, backend.fail) {
		t.Errorf("Set: expected cause to be wrapped, got %v", err)
	}
	if err := service.ClearLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k")); !errors.Is(err, offchain.ErrBackend) {
		t.Errorf("Clear: expected ErrBackend, got %v", err)
	}
	if _, _, err := service.GetLocalStorage(ctx, offchain.StorageKindPersistent, []byte("k")); !errors.Is(err, offchain.ErrBackend) {
		t.Errorf("Get: expected ErrBackend, got %v", err)
	}
}

func TestConcurrentClients(t *testing.T) {
	service := offchain.NewOffchain(memory.NewMemoryBackend(), allowAll)
	ctx := context.Background()

	const workers = 16
	const ops = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := []byte(fmt.Sprintf("w%d-k%d", w, i%10))
				value := []byte(fmt.Sprintf("v%d", i))
				if err := service.SetLocalStorage(ctx, offchain.StorageKindPersistent, key, value); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				got, ok, err := service.GetLocalStorage(ctx, offchain.StorageKindPersistent, key)
				if err != nil || !ok || !bytes.Equal(got, value) {
					t.Errorf("Expected own write %q, got %q ok=%v err=%v", value, got, ok, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
