package ws

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/ValentinKolb/okv/rpc/transport"
	"github.com/ValentinKolb/okv/rpc/transport/base"
	"github.com/ValentinKolb/okv/rpc/transport/tcp"
	"github.com/gorilla/websocket"
)

// clientConnector implements the IClientConnector interface for websockets
type clientConnector struct {
	dialer *websocket.Dialer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "ws"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	u, err := endpointURL(endpoint)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.dialer.Dial(u, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("websocket connection error: %v", err)
	}

	return newWSConn(conn), nil
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	wc, ok := conn.(*wsConn)
	if !ok {
		return nil
	}
	return tcp.ApplySocketOptions(wc.ws.NetConn(), config.Transport.SocketConf, config.Transport.TCPConf)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// endpointURL turns host:port into ws://host:port/ws, full ws:// and wss:// urls keep their path (default /ws)
func endpointURL(endpoint string) (string, error) {
	if !strings.Contains(endpoint, "://") {
		endpoint = "ws://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("unsupported websocket scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = Path
	}
	return u.String(), nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewWSClientTransport creates a new websocket client transport
func NewWSClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: 10 * time.Second,
		},
	})
}
