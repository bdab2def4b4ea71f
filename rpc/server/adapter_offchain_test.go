package server

import (
	"bytes"
	"context"
	"testing"

	"github.com/ValentinKolb/okv/lib/backend/memory"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
)

// countingService records the number of calls that reached the service
type countingService struct {
	offchain.IOffchain
	calls int
}

func (c *countingService) SetLocalStorage(ctx context.Context, kind offchain.StorageKind, key, value []byte) error {
	c.calls++
	return c.IOffchain.SetLocalStorage(ctx, kind, key, value)
}

func (c *countingService) ClearLocalStorage(ctx context.Context, kind offchain.StorageKind, key []byte) error {
	c.calls++
	return c.IOffchain.ClearLocalStorage(ctx, kind, key)
}

func (c *countingService) GetLocalStorage(ctx context.Context, kind offchain.StorageKind, key []byte) ([]byte, bool, error) {
	c.calls++
	return c.IOffchain.GetLocalStorage(ctx, kind, key)
}

func newTestService(gateErr error) *countingService {
	gate := offchain.GateFunc(func(context.Context) error { return gateErr })
	return &countingService{IOffchain: offchain.NewOffchain(memory.NewMemoryBackend(), gate)}
}

func TestOffchainAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := NewOffchainServerAdapter()
	persistent := offchain.StorageKindPersistent

	t.Run("SetGetClear", func(t *testing.T) {
		svc := newTestService(nil)

		resp := adapter.Handle(ctx, common.NewSetRequest(persistent, []byte("k1"), []byte{0x01, 0x02}), svc)
		if resp.MsgType != common.MsgTOffchainSet || resp.AsError() != nil {
			t.Fatalf("Unexpected set response: %+v", resp)
		}

		resp = adapter.Handle(ctx, common.NewGetRequest(persistent, []byte("k1")), svc)
		if resp.MsgType != common.MsgTOffchainGet || !resp.Ok || !bytes.Equal(resp.Value, []byte{0x01, 0x02}) {
			t.Fatalf("Unexpected get response: %+v", resp)
		}

		resp = adapter.Handle(ctx, common.NewClearRequest(persistent, []byte("k1")), svc)
		if resp.MsgType != common.MsgTOffchainClear || resp.AsError() != nil {
			t.Fatalf("Unexpected clear response: %+v", resp)
		}

		resp = adapter.Handle(ctx, common.NewGetRequest(persistent, []byte("k1")), svc)
		if resp.Ok || resp.AsError() != nil {
			t.Fatalf("Expected absent value after clear, got %+v", resp)
		}
	})

	t.Run("LocalKindUnavailable", func(t *testing.T) {
		svc := newTestService(nil)
		resp := adapter.Handle(ctx, common.NewGetRequest(offchain.StorageKindLocal, []byte("k1")), svc)
		if resp.Code != offchain.CodeUnavailableStorageKind {
			t.Errorf("Expected code %d, got %d", offchain.CodeUnavailableStorageKind, resp.Code)
		}
	})

	t.Run("GateDenied", func(t *testing.T) {
		svc := newTestService(offchain.ErrUnsafeRPCCalled)
		resp := adapter.Handle(ctx, common.NewSetRequest(persistent, []byte("k"), []byte("v")), svc)
		if resp.Code != offchain.CodeUnsafeRPCCalled {
			t.Errorf("Expected code %d, got %d", offchain.CodeUnsafeRPCCalled, resp.Code)
		}
	})

	t.Run("InvalidKindNeverReachesService", func(t *testing.T) {
		svc := newTestService(nil)
		for _, req := range []*common.Message{
			common.NewSetRequest(7, []byte("k"), []byte("v")),
			common.NewClearRequest(0, []byte("k")),
			common.NewGetRequest(3, []byte("k")),
		} {
			resp := adapter.Handle(ctx, req, svc)
			if resp.Code != offchain.CodeInvalidParams {
				t.Errorf("%s: expected code %d, got %d", req.MsgType, offchain.CodeInvalidParams, resp.Code)
			}
		}
		if svc.calls != 0 {
			t.Errorf("Expected no service calls, got %d", svc.calls)
		}
	})

	t.Run("UnsupportedMessageType", func(t *testing.T) {
		resp := adapter.Handle(ctx, &common.Message{MsgType: common.MsgTSuccess}, newTestService(nil))
		if resp.MsgType != common.MsgTError || resp.Code != offchain.CodeInvalidParams {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("NilService", func(t *testing.T) {
		resp := adapter.Handle(ctx, common.NewGetRequest(persistent, []byte("k")), nil)
		if resp.Code != offchain.CodeInternalError {
			t.Errorf("Expected code %d, got %d", offchain.CodeInternalError, resp.Code)
		}
	})
}
