package websocket

import (
	"fmt"
	"math"
)

// fragment is the codec's explicit reassembly state: the opcode and
// accumulated payload of a data message whose final (fin=1) frame hasn't
// arrived yet. It is kept as plain state rather than generator/coroutine
// control flow so it survives being paused and resumed across arbitrarily
// many partial reads, and across control frames interleaved mid-message.
type fragment struct {
	opcode Opcode
	data   []byte
}

// MessageCodec is the incremental decoder/encoder for WebSocket frames. It
// reassembles fragmented messages and interleaves control frames correctly,
// and it never performs I/O: Decode and Encode are pure buffer transforms.
//
// A MessageCodec is created once per connection and lives until the
// connection closes. It is mutated exclusively by the single goroutine
// driving I/O on that connection; it takes no locks of its own.
type MessageCodec struct {
	interrupted *fragment
	useMask     bool
}

// ClientMessageCodec creates a MessageCodec for the client role: encoded
// messages are masked, as RFC 6455 requires of every client-to-server frame.
func ClientMessageCodec() *MessageCodec {
	return &MessageCodec{useMask: true}
}

// Decode attempts to extract one Message from buf's unread bytes.
//
// A nil Message with a nil error is NeedMore: the buffer does not yet hold
// a complete frame. Decode has already reserved more capacity in buf; the
// caller should read more bytes from the transport and call Decode again.
//
// A non-nil error is fatal to the connection: Decode does not recover from
// a protocol violation, and the caller must close the transport.
func (c *MessageCodec) Decode(buf *readBuffer) (*Message, error) {
	state := c.interrupted
	c.interrupted = nil

	for {
		raw := buf.unread()
		h, headerLen, ok := parseFrameHeader(raw)
		if !ok {
			// Not enough bytes for even the header. Reserve room for a
			// header plus a reasonable head start on the payload.
			buf.reserve(headerReserve)
			c.interrupted = state
			return nil, nil
		}

		if h.dataLen > uint64(math.MaxInt-headerLen) {
			return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLong, h.dataLen)
		}
		frameLen := headerLen + int(h.dataLen)
		if len(raw) < frameLen {
			// The header is here but the payload isn't. Reserve the rest of
			// the frame, capped at 1 GiB per step so a peer that claims a
			// multi-exabyte frame can't force one giant allocation.
			growBy := int(h.dataLen)
			if growBy > maxFrameReserve {
				growBy = maxFrameReserve
			}
			buf.reserve(growBy + headerReserve)
			c.interrupted = state
			return nil, nil
		}

		if h.rsv != 0 {
			return nil, ErrReservedBitsSet
		}

		// payload aliases buf's backing array, which buf.advance may shift
		// or overwrite once enough has been consumed (its compaction
		// branch). Mask in place while the alias is still valid, then copy
		// it out to an owned slice before advancing past it — every use of
		// payload below must see data that survives compaction.
		payload := raw[headerLen:frameLen]
		if h.masked {
			MaskSlice(payload, h.mask)
		}
		payload = append([]byte(nil), payload...)
		buf.advance(frameLen)

		isContinuation := h.opcode == uint8(opcodeContinuation)
		var opcode Opcode
		if !isContinuation {
			opcode = Opcode(h.opcode)
			if !opcode.valid() {
				return nil, fmt.Errorf("%w: %d", ErrBadOpcode, h.opcode)
			}
			if opcode.IsControl() && len(payload) > maxControlPayload {
				return nil, ErrControlTooLong
			}
		}

		if state == nil {
			switch {
			case isContinuation:
				return nil, ErrDanglingContinuation
			case opcode.IsControl():
				if !h.fin {
					return nil, ErrControlFragmented
				}
				return finalize(opcode, payload)
			case h.fin:
				return finalize(opcode, payload)
			default:
				state = &fragment{opcode: opcode, data: payload}
				continue
			}
		}

		switch {
		case !isContinuation && opcode.IsControl():
			// Control frames MUST have fin=1; https://datatracker.ietf.org/doc/html/rfc6455#section-5.5.
			if !h.fin {
				return nil, ErrControlFragmented
			}
			// Stash the interrupted data message back and surface the
			// control frame now; reassembly resumes on the next call.
			c.interrupted = state
			return finalize(opcode, payload)
		case !isContinuation:
			return nil, ErrNestedDataFrame
		default:
			state.data = append(state.data, payload...)
			if h.fin {
				return finalize(state.opcode, state.data)
			}
			continue
		}
	}
}

func finalize(opcode Opcode, data []byte) (*Message, error) {
	msg, err := NewMessage(opcode, data)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Encode appends the wire representation of msg to dst: a fin=1 header
// followed by the payload, masked if this codec is in client mode. Encoding
// never fragments; callers that want fragmentation must build continuation
// frames at a layer above this one.
func (c *MessageCodec) Encode(msg *Message, dst []byte) ([]byte, error) {
	if msg.Opcode.IsControl() && len(msg.Data) > maxControlPayload {
		return dst, ErrControlTooLong
	}

	var mask *Mask
	if c.useMask {
		m, err := NewMask()
		if err != nil {
			return dst, fmt.Errorf("websocket: generate mask: %w", err)
		}
		mask = &m
	}

	dst = appendFrameHeader(dst, msg.Opcode, mask, len(msg.Data))

	if mask == nil {
		return append(dst, msg.Data...), nil
	}

	offset := len(dst)
	dst = append(dst, make([]byte, len(msg.Data))...)
	MaskSliceCopy(dst[offset:], msg.Data, *mask)
	return dst, nil
}
