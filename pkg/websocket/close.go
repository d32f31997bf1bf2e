package websocket

import "encoding/binary"

// handlePing answers an incoming ping with a pong carrying the same
// payload, as https://datatracker.ietf.org/doc/html/rfc6455#section-5.5.2
// requires.
func (c *Conn) handlePing(msg Message) {
	if err := c.send(OpcodePong, msg.Data); err != nil {
		c.logger.Debug("failed to send pong", "error", err)
	}
}

// handleClose processes an incoming close control frame: it validates and
// normalizes the close code and reason, answers with this connection's own
// close frame if one hasn't been sent yet, and marks the connection as
// having received its peer's half of the closing handshake. It reports
// whether the caller's read loop should stop.
func (c *Conn) handleClose(msg Message) bool {
	c.closeReceived = true

	code, reason := parseClosePayload(msg.Data)
	code, reason = checkClosePayload(code, reason)

	c.logger.Debug("received close frame", "close_code", code, "close_reason", reason)
	c.sendCloseControlFrame(code, reason)

	return true
}

// parseClosePayload extracts the CloseCode and optional UTF-8 reason from
// an incoming close control frame's payload, as defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-7.1.5.
func parseClosePayload(payload []byte) (CloseCode, string) {
	switch len(payload) {
	case 0:
		return CloseNormalClosure, ""
	case 1:
		return CloseProtocolError, ""
	}

	code := CloseCode(binary.BigEndian.Uint16(payload))
	return code, string(payload[2:])
}

// checkClosePayload applies the protocol sanity checks and corrections RFC
// 6455 describes for close codes that an endpoint must never itself send
// but that might still arrive on the wire (reserved codes, and codes below
// 1000 or in the unassigned 1012-2999 range), and truncates an oversized
// reason to fit the control frame length limit.
func checkClosePayload(code CloseCode, reason string) (CloseCode, string) {
	switch {
	case code < CloseNormalClosure:
		code = CloseProtocolError
	case code >= 1004 && code <= 1006:
		code = CloseProtocolError
	case code > CloseInternalError && code < 3000:
		code = CloseProtocolError
	}

	if len(reason) > maxCloseReason {
		reason = truncateUTF8(reason, maxCloseReason)
	}

	return code, reason
}

// sendCloseControlFrame either initiates or responds to a WebSocket closing
// handshake. It may be called from handleClose (the peer closed first) or
// from Close (this side closes first); it is idempotent, since
// https://datatracker.ietf.org/doc/html/rfc6455#section-7.1.2 only allows
// one close frame to ever be sent per connection.
func (c *Conn) sendCloseControlFrame(code CloseCode, reason string) {
	c.closeSentMu.Lock()
	defer c.closeSentMu.Unlock()

	if c.closeSent {
		return
	}

	msg := CloseMessageWithReason(code, reason)
	if err := c.send(OpcodeClose, msg.Data); err != nil {
		c.logger.Debug("failed to send close frame", "error", err)
	}
	c.closeSent = true

	if c.closeReceived {
		_ = c.transport.Close()
	}
}

func (c *Conn) isCloseSent() bool {
	c.closeSentMu.RLock()
	defer c.closeSentMu.RUnlock()
	return c.closeSent
}

// Close performs the initiating half of a WebSocket closing handshake,
// https://datatracker.ietf.org/doc/html/rfc6455#section-7.1.2.
func (c *Conn) Close(code CloseCode) {
	c.sendCloseControlFrame(code, "")
}

// CloseWithReason is Close with an explanatory reason attached to the close
// frame.
func (c *Conn) CloseWithReason(code CloseCode, reason string) {
	c.sendCloseControlFrame(code, reason)
}

// IsClosed reports whether both halves of the closing handshake have
// completed.
func (c *Conn) IsClosed() bool {
	return c.closeReceived && c.isCloseSent()
}

// IsClosing reports whether either half of the closing handshake has
// started.
func (c *Conn) IsClosing() bool {
	return c.closeReceived || c.isCloseSent()
}
