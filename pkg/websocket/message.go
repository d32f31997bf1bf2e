package websocket

import (
	"encoding/binary"
	"unicode/utf8"
)

// Message is one logical application datum: an opcode and its payload,
// possibly assembled from multiple WebSocket frames of the same data
// opcode terminated by fin=1. The payload is owned by the Message.
type Message struct {
	Opcode Opcode
	Data   []byte
}

// NewMessage constructs a Message, enforcing the invariants in
// https://datatracker.ietf.org/doc/html/rfc6455#section-5.6:
//   - Text payloads must be valid UTF-8.
//   - Close payloads must be empty, or at least 2 bytes with a valid UTF-8 reason.
//   - Control frame payloads must be at most 125 bytes.
func NewMessage(opcode Opcode, data []byte) (Message, error) {
	switch opcode {
	case OpcodeClose:
		switch {
		case len(data) == 0:
		case len(data) == 1:
			return Message{}, ErrInvalidClosePayload
		default:
			if !utf8.Valid(data[2:]) {
				return Message{}, ErrInvalidUTF8
			}
		}
	case OpcodeText:
		if !utf8.Valid(data) {
			return Message{}, ErrInvalidUTF8
		}
	}

	if opcode.IsControl() && len(data) > maxControlPayload {
		return Message{}, ErrControlTooLong
	}

	return Message{Opcode: opcode, Data: data}, nil
}

// TextMessage creates a text message without checking that s is valid UTF-8.
// A Go string may hold arbitrary bytes, so an invalid s yields a Text
// message that NewMessage would have rejected.
func TextMessage(s string) Message {
	return Message{Opcode: OpcodeText, Data: []byte(s)}
}

// BinaryMessage creates a binary message. No validation is performed.
func BinaryMessage(data []byte) Message {
	return Message{Opcode: OpcodeBinary, Data: data}
}

// CloseMessage creates a close message with no code or reason.
func CloseMessage() Message {
	return Message{Opcode: OpcodeClose}
}

// maxCloseReason is the maximum length of a connection closing reason.
// The difference from maxControlPayload is the 2-byte close code prefix.
const maxCloseReason = maxControlPayload - 2

// CloseMessageWithReason creates a close message carrying code and reason.
// reason is truncated on a UTF-8 character boundary so that the encoded
// payload (2-byte code plus reason) never exceeds maxControlPayload.
func CloseMessageWithReason(code CloseCode, reason string) Message {
	reason = truncateUTF8(reason, maxCloseReason)

	data := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(data[:2], uint16(code))
	copy(data[2:], reason)

	return Message{Opcode: OpcodeClose, Data: data}
}

// PingMessage creates a ping message. The caller is responsible for
// respecting the 125-byte control frame limit.
func PingMessage(data []byte) Message {
	return Message{Opcode: OpcodePing, Data: data}
}

// PongMessage creates a pong message. The caller is responsible for
// respecting the 125-byte control frame limit.
func PongMessage(data []byte) Message {
	return Message{Opcode: OpcodePong, Data: data}
}

// AsText returns the message's payload as a string if its opcode is Text.
// It does not re-check UTF-8 validity: NewMessage (and therefore Decode)
// has already checked it, while TextMessage does not check it at all.
func (m Message) AsText() (string, bool) {
	if m.Opcode != OpcodeText {
		return "", false
	}
	return string(m.Data), true
}

// CloseFrame is the decoded form of a Close message's payload.
type CloseFrame struct {
	Code   CloseCode
	Reason string
}

// AsClose returns the message's close code and reason if its opcode is
// Close and its payload carries at least a code.
func (m Message) AsClose() (CloseFrame, bool) {
	if m.Opcode != OpcodeClose || len(m.Data) < 2 {
		return CloseFrame{}, false
	}
	return CloseFrame{
		Code:   CloseCode(binary.BigEndian.Uint16(m.Data[:2])),
		Reason: string(m.Data[2:]),
	}, true
}

// truncateUTF8 shortens s to at most n bytes, backing off to the nearest
// preceding UTF-8 character boundary so the result is never split mid-rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
