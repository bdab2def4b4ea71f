package ws

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/transport"
	"github.com/ValentinKolb/okv/rpc/transport/base"
	"github.com/ValentinKolb/okv/rpc/transport/tcp"
	"github.com/gorilla/websocket"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// Path is the http path of the websocket endpoint
	Path = "/ws"

	defaultBufferSize = 64 * 1024 // 64 KB
	pingInterval      = 30 * time.Second
)

// serverConnector implements the IServerConnector interface for websockets
type serverConnector struct {
	upgrader websocket.Upgrader
}

// wsListener is a net.Listener handing out the upgraded websocket connections of an http server
type wsListener struct {
	server    *http.Server
	addr      net.Addr
	conns     chan net.Conn
	closed    chan struct{}
	closeOnce sync.Once
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "ws"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	ln, err := net.Listen("tcp", config.Transport.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	l := &wsListener{
		addr:   ln.Addr(),
		conns:  make(chan net.Conn),
		closed: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := c.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied with an http error
			Logger.Warningf("Websocket upgrade from %s failed: %v", r.RemoteAddr, err)
			return
		}

		wc := newWSConn(conn)
		select {
		case l.conns <- wc:
			go wc.keepAlive(pingInterval)
		case <-l.closed:
			_ = wc.Close()
		}
	})

	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			Logger.Errorf("Websocket http server failed: %v", err)
			_ = l.Close()
		}
	}()

	return l, nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	wc, ok := conn.(*wsConn)
	if !ok {
		return nil
	}
	return tcp.ApplySocketOptions(wc.ws.NetConn(), config.Transport.SocketConf, config.Transport.TCPConf)
}

// --------------------------------------------------------------------------
// net.Listener Methods
// --------------------------------------------------------------------------

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

// Close stops the http server. Upgraded connections are hijacked and closed by the base transport.
func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.server.Close()
	})
	return err
}

func (l *wsListener) Addr() net.Addr {
	return l.addr
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewWSDefaultServerTransport creates a new websocket server transport with default buffer size
func NewWSDefaultServerTransport() transport.IRPCServerTransport {
	return NewWSServerTransport(defaultBufferSize, 0)
}

// NewWSServerTransport creates a new websocket server transport with specified buffer size and
// workers per connection (zero uses the configured value)
func NewWSServerTransport(bufferSize int, workersPerConn int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}, bufferSize, workersPerConn)
}
