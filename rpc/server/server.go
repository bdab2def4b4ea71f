package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/ValentinKolb/okv/lib/backend"
	"github.com/ValentinKolb/okv/lib/backend/raft"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/lib/safety"
	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/serializer"
	"github.com/ValentinKolb/okv/rpc/transport"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// serverService is a struct that represents a service in the RPC server
// It contains the offchain service, the shared storage it encapsulates and the adapter
// that handles requests for the service
type serverService struct {
	Service offchain.IOffchain
	Storage *offchain.SharedStorage
	Adapter IRPCServerAdapter
}

// RPCServer serves the offchain storage service over a transport
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	services   *xsync.MapOf[uint64, serverService]
	policy     safety.RPCMethods
	metrics    *metricsServer
	closeOnce  sync.Once
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		services:   xsync.NewMapOf[uint64, serverService](),
	}
}

// --------------------------------------------------------------------------
// Request handling
// --------------------------------------------------------------------------

// handle decodes a request, derives the safety decision from the peer in ctx and
// lets the adapter of the service answer it. The result is always a serialized response.
func (s *RPCServer) handle(ctx context.Context, serviceID uint64, req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	if svc, ok := s.services.Load(serviceID); !ok {
		// Case service does not exist -> error
		respMsg = common.NewErrorResponse(offchain.NewError(offchain.CodeInternalError,
			fmt.Sprintf("service %d not found", serviceID)))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(offchain.NewError(offchain.CodeInvalidParams,
			fmt.Sprintf("failed to deserialize request: %s", err)))
	} else {
		peer := transport.PeerFromContext(ctx)
		ctx = safety.WithDenyUnsafe(ctx, s.policy.DenyUnsafe(peer))
		respMsg = svc.Adapter.Handle(ctx, &msg, svc.Service)
	}

	recordRequest(msg.MsgType, respMsg.Code, start)

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, err = s.serializer.Serialize(*common.NewErrorResponse(offchain.NewError(offchain.CodeInternalError,
			fmt.Sprintf("failed to serialize response: %s", err))))
		if err != nil {
			return nil
		}
	}
	return val
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// openBackend creates the storage backend described by the config
func (s *RPCServer) openBackend() (offchain.Backend, error) {
	t, err := backend.ParseType(s.config.Backend)
	if err != nil {
		return nil, err
	}

	if t != backend.TypeRaft {
		return backend.Open(t, s.config.BackendPath)
	}

	// Create the Dragonboat NodeHost, it is closed together with the backend
	nodeHost, err := dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create node host: %w", err)
	}

	if err := nodeHost.StartConcurrentReplica(s.config.ClusterMembers, false, raft.CreateStateMachineFactory(), s.config.ToDragonboatConfig()); err != nil {
		nodeHost.Close()
		return nil, fmt.Errorf("failed to start replica for shard %d: %w", s.config.ServiceID, err)
	}

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return raft.NewReplicatedBackend(nodeHost, s.config.ServiceID, timeout), nil
}

func (s *RPCServer) init() error {
	// Init logger
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	policy, err := safety.ParseRPCMethods(s.config.RPCMethods)
	if err != nil {
		return err
	}
	s.policy = policy

	b, err := s.openBackend()
	if err != nil {
		return err
	}

	storage := offchain.NewSharedStorage(b)
	s.services.Store(s.config.ServiceID, serverService{
		Service: offchain.NewOffchainWithStorage(storage, safety.NewContextGate()),
		Storage: storage,
		Adapter: NewOffchainServerAdapter(),
	})
	registerBackendInfo(s.config.Backend)
	Logger.Infof("created %s backed offchain service %d (rpc methods: %s)", s.config.Backend, s.config.ServiceID, policy)

	if s.config.MetricsEndpoint != "" {
		s.metrics = newMetricsServer(s.config.MetricsEndpoint)
		s.metrics.start()
	}

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)

	Logger.Infof("okv setup completed successfully")
	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the services and start the transport layer.
// It blocks until Close is called or the transport fails.
func (s *RPCServer) Serve() error {
	if err := s.init(); err != nil {
		return errors.Join(err, s.Close())
	}
	err := s.transport.Listen(s.config)
	return errors.Join(err, s.Close())
}

// Close stops the transport and closes the storage of every service
func (s *RPCServer) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		if err := s.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close transport: %w", err))
		}
		if s.metrics != nil {
			if err := s.metrics.close(); err != nil {
				errs = append(errs, fmt.Errorf("close metrics: %w", err))
			}
		}
		s.services.Range(func(id uint64, svc serverService) bool {
			if err := svc.Storage.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close storage of service %d: %w", id, err))
			}
			s.services.Delete(id)
			return true
		})
	})
	return errors.Join(errs...)
}
