package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/serializer"
	"github.com/ValentinKolb/okv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	serviceID  uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used by the RPC client to send requests
// It takes a context, a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// Error responses are turned back into the typed offchain.Error, transport and serialization
// failures are reported as offchain.ErrInternal
func (a *rpcClientAdapter) invokeRPCRequest(ctx context.Context, req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, offchain.WrapError(offchain.CodeInternalError, "failed to serialize request", err)
	}

	respBytes, err := a.transport.Send(ctx, a.serviceID, reqBytes)
	if err != nil {
		return nil, offchain.WrapError(offchain.CodeInternalError, "failed to send request", err)
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, offchain.WrapError(offchain.CodeInternalError, "failed to deserialize response", err)
	}

	// Check if the response is an error response
	if err := resp.AsError(); err != nil {
		return nil, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, offchain.NewError(offchain.CodeInternalError,
			fmt.Sprintf("unexpected message type: %s, expected %s", resp.MsgType, req.MsgType))
	}

	return resp, nil
}
