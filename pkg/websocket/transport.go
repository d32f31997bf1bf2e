package websocket

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// transportKind tags which concrete dial path produced a Transport, for
// logging and diagnostics. The actual I/O is always driven through the
// embedded net.Conn — Go's interfaces make a second dispatch mechanism
// unnecessary — but callers and log lines benefit from knowing which kind
// they're looking at without a type switch.
type transportKind uint8

const (
	transportPlain transportKind = iota
	transportTLS
)

func (k transportKind) String() string {
	if k == transportTLS {
		return "tls"
	}
	return "plain"
}

// Transport wraps the raw connection underlying a WebSocket session, before
// any framing is applied: a plain TCP socket for ws:// or a TLS session for
// wss://. It exists as its own type, rather than being folded invisibly into
// the dial path, because the handshake and the reader/writer goroutines need
// to talk to "whatever the wire is" without caring which one it is.
type Transport struct {
	kind transportKind
	net.Conn
}

// dialTransport opens the underlying connection for addr ("host:port") per
// the requested scheme. TLS dials use tlsConfig (an empty one if nil); when
// it has no ServerName, a copy with ServerName set to addr's host is used.
func dialTransport(ctx context.Context, network, addr string, tlsRequired bool, tlsConfig *tls.Config) (*Transport, error) {
	var d net.Dialer

	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("websocket: dial %s: %w", addr, err)
	}

	if !tlsRequired {
		return &Transport{kind: transportPlain, Conn: conn}, nil
	}

	if tlsConfig == nil {
		tlsConfig = &tls.Config{}
	}
	if tlsConfig.ServerName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err == nil {
			tlsConfig = tlsConfig.Clone()
			tlsConfig.ServerName = host
		}
	}

	tlsConn := tls.Client(conn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("websocket: TLS handshake with %s: %w", addr, err)
	}

	return &Transport{kind: transportTLS, Conn: tlsConn}, nil
}
