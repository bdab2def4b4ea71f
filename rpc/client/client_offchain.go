package client

import (
	"context"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/serializer"
	"github.com/ValentinKolb/okv/rpc/transport"
)

// NewRPCOffchain creates a client for the offchain storage service
// The function takes a service ID, a config, a transport and a serializer as parameters
// It connects the transport and returns a client implementing offchain.IOffchain
//
// The safety decision is made by the server from the connection, a DenyUnsafe
// value in ctx has no effect on remote calls.
func NewRPCOffchain(
	serviceID uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCOffchain, error) {

	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &RPCOffchain{
		rpcClientAdapter{
			serviceID:  serviceID,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// RPCOffchain implements offchain.IOffchain by forwarding every call to a server
type RPCOffchain struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see offchain.IOffchain)
// --------------------------------------------------------------------------

func (c *RPCOffchain) SetLocalStorage(ctx context.Context, kind offchain.StorageKind, key, value []byte) error {
	_, err := c.invokeRPCRequest(ctx, common.NewSetRequest(kind, key, value))
	return err
}

func (c *RPCOffchain) ClearLocalStorage(ctx context.Context, kind offchain.StorageKind, key []byte) error {
	_, err := c.invokeRPCRequest(ctx, common.NewClearRequest(kind, key))
	return err
}

func (c *RPCOffchain) GetLocalStorage(ctx context.Context, kind offchain.StorageKind, key []byte) ([]byte, bool, error) {
	resp, err := c.invokeRPCRequest(ctx, common.NewGetRequest(kind, key))
	if err != nil {
		return nil, false, err
	}
	if !resp.Ok {
		return nil, false, nil
	}

	// serializers may drop empty values, a found value is never nil
	value := []byte(resp.Value)
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Close closes the underlying transport
func (c *RPCOffchain) Close() error {
	return c.transport.Close()
}
