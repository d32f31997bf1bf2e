package websocket

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/raul-gherman/websocket-rawl/internal/logger"
)

// DialOpt configures a Dial call.
type DialOpt func(*dialConfig)

type dialConfig struct {
	headers   http.Header
	tlsConfig *tls.Config
	logger    *slog.Logger
}

// WithHTTPHeader adds a single HTTP header to the WebSocket handshake
// request. Use WithHTTPHeaders to set several at once.
func WithHTTPHeader(key, value string) DialOpt {
	return func(c *dialConfig) {
		c.headers.Add(key, value)
	}
}

// WithHTTPHeaders adds multiple HTTP headers to the WebSocket handshake
// request. Values are added alongside any already set under the same keys,
// not in place of them.
func WithHTTPHeaders(h http.Header) DialOpt {
	return func(c *dialConfig) {
		for k, vs := range h {
			for _, v := range vs {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithTLSConfig overrides the TLS configuration used for wss:// dials. It
// has no effect on ws:// dials.
func WithTLSConfig(tc *tls.Config) DialOpt {
	return func(c *dialConfig) {
		c.tlsConfig = tc
	}
}

// Dial performs a WebSocket handshake against wsURL ("ws://..." or
// "wss://...") and, on success, returns a live Conn with its read and
// write goroutines already running.
//
// https://datatracker.ietf.org/doc/html/rfc6455#section-4.1
func Dial(ctx context.Context, wsURL string, opts ...DialOpt) (*Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadURL, err)
	}

	var tlsRequired bool
	switch u.Scheme {
	case "ws":
		tlsRequired = false
	case "wss":
		tlsRequired = true
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadURL, u.Scheme)
	}

	cfg := &dialConfig{
		headers: http.Header{},
		logger:  logger.FromContext(ctx),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if jwtErr := cfg.headers.Get(jwtErrorHeader); jwtErr != "" {
		return nil, fmt.Errorf("websocket: sign JWT bearer token: %s", jwtErr)
	}

	addr := u.Host
	if u.Port() == "" {
		if tlsRequired {
			addr += ":443"
		} else {
			addr += ":80"
		}
	}

	transport, err := dialTransport(ctx, "tcp", addr, tlsRequired, cfg.tlsConfig)
	if err != nil {
		return nil, err
	}

	nonce, err := newNonce()
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	bw := bufio.NewWriter(transport)
	if err := buildUpgradeRequest(bw, u, nonce, cfg.headers); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("websocket: send handshake request: %w", err)
	}

	br := bufio.NewReader(transport)
	resp, err := readUpgradeResponse(br, nonce)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	_ = resp.Body.Close()

	// http.ReadResponse may have buffered bytes past the response headers —
	// the start of the server's first WebSocket frame, if it was eager.
	// Those bytes must survive the swap from bufio.Reader to the codec's
	// own readBuffer, or the connection would silently drop the start of
	// its first message.
	buffered := make([]byte, br.Buffered())
	_, _ = br.Read(buffered)

	conn := newConn(transport, buffered, cfg.logger)
	conn.logger.Debug("WebSocket connection established", "transport", transport.kind)
	return conn, nil
}
