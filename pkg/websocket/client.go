package websocket

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/raul-gherman/websocket-rawl/internal/logger"
)

var clients = sync.Map{}

// Client is a thin, deduplicating wrapper around a single [Conn]: callers
// that ask for the same logical connection (by id) concurrently get back
// the same Client rather than racing to dial twice.
//
// Reconnection policy — retry backoff, seamless handover to a freshly
// dialed Conn, scheduled refreshes — is deliberately out of scope here; a
// Client's Conn is dialed once and lives until it closes. A caller that
// wants resilience across disconnects owns that policy itself, dialing a
// new Client when the old one's IncomingMessages channel closes.
type Client struct {
	logger *slog.Logger
	conn   *Conn
}

// NewOrCachedClient dials a Conn to the server returned by urlFn and wraps
// it in a Client, unless a Client already exists under the given id — in
// which case that existing Client is returned and no new connection is made.
func NewOrCachedClient(ctx context.Context, urlFn func(context.Context) (string, error), id string, opts ...DialOpt) (*Client, error) {
	hashedID := hash(id)
	if existing, ok := clients.Load(hashedID); ok {
		return existing.(*Client), nil //nolint:errcheck
	}

	url, err := urlFn(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := Dial(ctx, url, opts...)
	if err != nil {
		return nil, err
	}

	c := &Client{logger: logger.FromContext(ctx), conn: conn}

	actual, loaded := clients.LoadOrStore(hashedID, c)
	if loaded {
		// A different goroutine won the race since the Load above.
		conn.Close(CloseGoingAway)
		return actual.(*Client), nil //nolint:errcheck
	}

	return c, nil
}

// hash generates a stable-but-irreversible SHA-256 hash of a Client ID, so
// the registry key doesn't retain the id itself in a form callers could
// read back out of process memory or logs.
func hash(id string) string {
	h := sha256.New()
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))
}

// IncomingMessages returns the client's channel that publishes data
// Messages as they are received from the server.
func (c *Client) IncomingMessages() <-chan Message {
	return c.conn.IncomingMessages()
}

// SendJSONMessage marshals v to JSON and sends it as a text message.
func (c *Client) SendJSONMessage(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.SendTextMessage(string(b))
}

// Close closes the client's underlying connection.
func (c *Client) Close(code CloseCode) {
	c.conn.Close(code)
}
