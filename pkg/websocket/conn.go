package websocket

import (
	"log/slog"
	"sync"

	"github.com/lithammer/shortuuid/v4"
)

// Conn represents an open client connection to a WebSocket server: the
// underlying Transport, the incremental MessageCodec decoding it, and the
// goroutines that drive reads and writes.
type Conn struct {
	id     string
	logger *slog.Logger

	transport *Transport
	codec     *MessageCodec
	readBuf   *readBuffer

	reader chan Message
	writer chan internalMessage

	// No synchronization needed: value changes are possible only in one
	// direction (false to true), and are always done by the single
	// goroutine running readMessages.
	closeReceived bool

	closeSent   bool
	closeSentMu sync.RWMutex

	// Only to minimize allocations, not for state management.
	writeBuf []byte
}

// internalMessage synchronizes concurrent calls that want to send a frame:
// each call hands its Message to the writer goroutine and waits on err.
type internalMessage struct {
	Opcode Opcode
	Data   []byte
	err    chan<- error
}

// newConn assembles a Conn around an already-upgraded Transport. buffered
// holds any bytes the handshake's bufio.Reader read from the socket past the
// HTTP response headers — the start of the server's first WebSocket frame,
// if it arrived eagerly in the same TCP segment as the 101 response. Those
// bytes are seeded into the codec's read buffer before any further reads
// happen, so nothing the server already sent is lost across the codec swap.
func newConn(t *Transport, buffered []byte, log *slog.Logger) *Conn {
	id := shortuuid.New()
	rb := newReadBuffer()
	rb.seed(buffered)

	c := &Conn{
		id:        id,
		logger:    log.With("conn_id", id),
		transport: t,
		codec:     ClientMessageCodec(),
		readBuf:   rb,
		reader:    make(chan Message),
		writer:    make(chan internalMessage),
	}

	go c.readMessages()
	go c.writeMessages()

	return c
}

// IncomingMessages returns the connection's channel that publishes data
// Messages as they are received from the server. The channel is closed
// when the read loop exits, whether due to a clean close handshake, a
// protocol error, or a transport failure.
func (c *Conn) IncomingMessages() <-chan Message {
	return c.reader
}

// readMessages runs as the connection's single reader goroutine. It
// alternates between decoding whatever is already buffered and reading
// more from the transport when the codec reports NeedMore, dispatching
// control frames (ping/pong/close) internally and publishing data
// messages to the reader channel.
func (c *Conn) readMessages() {
	defer close(c.reader)
	defer c.readBuf.release()

	for {
		msg, err := c.codec.Decode(c.readBuf)
		if err != nil {
			c.logger.Debug("closing connection after decode error", "error", err)
			c.abort()
			return
		}
		if msg == nil {
			if _, err := c.readBuf.fill(c.transport); err != nil {
				c.logger.Debug("closing connection after transport read error", "error", err)
				c.abort()
				return
			}
			continue
		}

		switch msg.Opcode {
		case OpcodePing:
			c.handlePing(*msg)
		case OpcodePong:
			c.logger.Debug("received pong")
		case OpcodeClose:
			if c.handleClose(*msg) {
				return
			}
		default:
			c.reader <- *msg
		}
	}
}

// writeMessages runs as the connection's single writer goroutine, so that
// concurrent SendTextMessage/SendBinaryMessage/Close calls never interleave
// their frame bytes on the wire.
func (c *Conn) writeMessages() {
	for msg := range c.writer {
		msg.err <- c.writeFrame(msg.Opcode, msg.Data)
		close(msg.err)
	}
}

// writeFrame encodes one message and writes it to the transport in full.
func (c *Conn) writeFrame(opcode Opcode, data []byte) error {
	m, err := NewMessage(opcode, data)
	if err != nil {
		return err
	}

	c.writeBuf = c.writeBuf[:0]
	c.writeBuf, err = c.codec.Encode(&m, c.writeBuf)
	if err != nil {
		return err
	}

	_, err = c.transport.Write(c.writeBuf)
	return err
}

// send hands a message to the writer goroutine and waits for it to be
// written (or to fail).
func (c *Conn) send(opcode Opcode, data []byte) error {
	errCh := make(chan error, 1)
	c.writer <- internalMessage{Opcode: opcode, Data: data, err: errCh}
	return <-errCh
}

// SendTextMessage sends a text message to the server.
func (c *Conn) SendTextMessage(s string) error {
	return c.send(OpcodeText, []byte(s))
}

// SendBinaryMessage sends a binary message to the server.
func (c *Conn) SendBinaryMessage(data []byte) error {
	return c.send(OpcodeBinary, data)
}

// abort tears down the transport after an unrecoverable decode or I/O
// error. Callers are responsible for logging the error themselves before
// calling abort, since only they know whether it was expected (e.g. a
// transport close race) or not.
func (c *Conn) abort() {
	_ = c.transport.Close()
}
