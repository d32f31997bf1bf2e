// Package websocket is a lightweight client-only implementation of the
// WebSocket protocol (RFC 6455), built around an incremental frame codec
// that never blocks on partial reads.
//
// It focuses on the two genuinely hard problems in the protocol: the
// fragment-aware frame decoder, which must operate on a continuously
// growing read buffer without over-reading or over-allocating on hostile
// input, and the masked frame encoder. Everything else — URL parsing, the
// HTTP Upgrade handshake, the plain/TLS transport adapter — is deliberately
// thin plumbing around that core.
//
// How does the decoder avoid blocking?
//  1. Decode is a pure, synchronous buffer transform. It never performs I/O.
//  2. When the buffer doesn't yet hold a complete frame, Decode reports
//     NeedMore (a nil Message and a nil error) instead of blocking; the
//     caller reads more bytes and calls Decode again.
//  3. Buffer growth is requested in bounded increments, so a peer
//     advertising an enormous frame length cannot force one catastrophic
//     allocation.
//
// Note A: fragment reassembly is explicit state (a nilable accumulator),
// not a generator — it must survive being paused and resumed across
// arbitrarily many partial reads.
//
// Note B: WebSocket [extensions] and [subprotocols] are not supported.
//
// Note C: server-side accept logic, reconnection policy, and Autobahn
// compliance testing are all out of scope for this package.
//
// [extensions]: https://www.iana.org/assignments/websocket/websocket.xhtml#extension-name
// [subprotocols]: https://www.iana.org/assignments/websocket/websocket.xhtml#subprotocol-name
package websocket
