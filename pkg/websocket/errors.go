package websocket

import "errors"

// Protocol errors. These are fatal to the connection: the codec does not
// recover from them, and the caller must close the transport.
var (
	ErrReservedBitsSet      = errors.New("websocket: reserved bits are set")
	ErrBadOpcode            = errors.New("websocket: unsupported opcode")
	ErrControlTooLong       = errors.New("websocket: control frame payload exceeds 125 bytes")
	ErrControlFragmented    = errors.New("websocket: control frame must not be fragmented")
	ErrDanglingContinuation = errors.New("websocket: continuation frame with nothing to continue")
	ErrNestedDataFrame      = errors.New("websocket: data frame received mid-fragment")
	ErrInvalidUTF8          = errors.New("websocket: invalid UTF-8 payload")
	ErrInvalidClosePayload  = errors.New("websocket: invalid close frame payload")
	ErrFrameTooLong         = errors.New("websocket: frame length does not fit this platform's address size")
)

// Handshake errors. These surface before any Message is ever delivered;
// there is no partial recovery, only retrying the handshake.
var (
	ErrBadURL               = errors.New("websocket: invalid URL")
	ErrBadStatus            = errors.New("websocket: unexpected handshake response status")
	ErrMissingUpgradeHeader = errors.New("websocket: missing or mismatched handshake response header")
	ErrBadAcceptKey         = errors.New("websocket: Sec-WebSocket-Accept mismatch")
)

// Transport errors. These surface unchanged from the underlying net/tls
// error, wrapped only with enough context to say which phase failed.
var (
	ErrClosedBeforeResponse = errors.New("websocket: connection closed before a handshake response arrived")
)
