package offchain

import (
	"context"

	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("offchain")

// denyAll is used when no gate is configured
var denyAll = GateFunc(func(context.Context) error { return ErrUnsafeRPCCalled })

type offchainImpl struct {
	storage *SharedStorage
	gate    Gate
}

// NewOffchain creates the offchain storage service on top of an initialized backend.
// The gate is consulted before every operation. A nil gate denies every call.
func NewOffchain(backend Backend, gate Gate) IOffchain {
	return NewOffchainWithStorage(NewSharedStorage(backend), gate)
}

// NewOffchainWithStorage creates the service on top of an existing shared handle.
// Use this if the caller needs to close the storage itself (see SharedStorage.Close).
func NewOffchainWithStorage(storage *SharedStorage, gate Gate) IOffchain {
	if gate == nil {
		gate = denyAll
	}
	return &offchainImpl{
		storage: storage,
		gate:    gate,
	}
}

// prefixFor runs the safety gate and maps the kind to the storage prefix.
// The order is fixed: gate first, then kind validation.
func (o *offchainImpl) prefixFor(ctx context.Context, op string, kind StorageKind) ([]byte, error) {
	if err := o.gate.Check(ctx); err != nil {
		log.Debugf("%s denied by safety gate: %v", op, err)
		return nil, err
	}

	switch kind {
	case StorageKindPersistent:
		return StoragePrefix, nil
	default:
		log.Debugf("%s rejected, storage kind %s is not available", op, kind)
		return nil, ErrUnavailableStorageKind
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.IOffchain)
// --------------------------------------------------------------------------

func (o *offchainImpl) SetLocalStorage(ctx context.Context, kind StorageKind, key, value []byte) error {
	prefix, err := o.prefixFor(ctx, "set", kind)
	if err != nil {
		return err
	}

	return o.storage.Write(func(b Backend) error {
		if err := b.Set(prefix, key, value); err != nil {
			log.Errorf("set failed: %v", err)
			return WrapError(CodeBackendFailure, ErrBackend.Msg, err)
		}
		return nil
	})
}

func (o *offchainImpl) ClearLocalStorage(ctx context.Context, kind StorageKind, key []byte) error {
	prefix, err := o.prefixFor(ctx, "clear", kind)
	if err != nil {
		return err
	}

	return o.storage.Write(func(b Backend) error {
		if err := b.Remove(prefix, key); err != nil {
			log.Errorf("clear failed: %v", err)
			return WrapError(CodeBackendFailure, ErrBackend.Msg, err)
		}
		return nil
	})
}

func (o *offchainImpl) GetLocalStorage(ctx context.Context, kind StorageKind, key []byte) ([]byte, bool, error) {
	prefix, err := o.prefixFor(ctx, "get", kind)
	if err != nil {
		return nil, false, err
	}

	var (
		value []byte
		ok    bool
	)
	err = o.storage.Read(func(b Backend) error {
		var rErr error
		value, ok, rErr = b.Get(prefix, key)
		if rErr != nil {
			log.Errorf("get failed: %v", rErr)
			return WrapError(CodeBackendFailure, ErrBackend.Msg, rErr)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, ok, nil
}
