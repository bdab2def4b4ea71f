package server

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
)

func NewOffchainServerAdapter() IRPCServerAdapter {
	return &offchainServerAdapterImpl{}
}

type offchainServerAdapterImpl struct{}

func (adapter *offchainServerAdapterImpl) Handle(ctx context.Context, req *common.Message, service offchain.IOffchain) *common.Message {
	// Check for nil service
	if service == nil {
		return common.NewErrorResponse(offchain.NewError(offchain.CodeInternalError, "handler: service is nil"))
	}

	// Kinds outside the known set are malformed requests, they never reach the service
	switch req.MsgType {
	case common.MsgTOffchainSet, common.MsgTOffchainClear, common.MsgTOffchainGet:
		if !req.Kind.IsValid() {
			return common.NewErrorResponse(offchain.NewError(offchain.CodeInvalidParams,
				fmt.Sprintf("invalid storage kind %d", uint32(req.Kind))))
		}
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTOffchainSet:
		err := service.SetLocalStorage(ctx, req.Kind, req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTOffchainClear:
		err := service.ClearLocalStorage(ctx, req.Kind, req.Key)
		return common.NewClearResponse(err)
	case common.MsgTOffchainGet:
		val, ok, err := service.GetLocalStorage(ctx, req.Kind, req.Key)
		return common.NewGetResponse(val, ok, err)
	default:
		return common.NewErrorResponse(offchain.NewError(offchain.CodeInvalidParams,
			fmt.Sprintf("unsupported message type: %s", req.MsgType)))
	}
}
