package websocket

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// headerReserve is the minimum capacity the decoder requests when a frame
// header doesn't fully fit in the buffer yet.
const headerReserve = 512

// maxFrameReserve bounds a single capacity reservation for frame payload
// data, so a peer advertising a multi-exabyte frame length cannot force one
// catastrophic allocation; the decoder instead grows in (at most) 1 GiB
// steps across successive reads.
const maxFrameReserve = 1 << 30

// readBuffer is the growable byte buffer the transport fills and the
// MessageCodec decodes from. It tracks an unread cursor separately from the
// buffer's fill length, so repeated partial decodes don't need to shift
// bytes around on every call — only when the consumed prefix grows large.
//
// The backing storage is taken from, and returned to, a bytebufferpool pool.
type readBuffer struct {
	bb  *bytebufferpool.ByteBuffer
	off int
}

func newReadBuffer() *readBuffer {
	return &readBuffer{bb: bytebufferpool.Get()}
}

// release returns the backing storage to the pool. The buffer must not be
// used afterward.
func (r *readBuffer) release() {
	r.bb.Reset()
	bytebufferpool.Put(r.bb)
	r.bb = nil
}

// unread returns the portion of the buffer not yet consumed by advance.
func (r *readBuffer) unread() []byte {
	return r.bb.B[r.off:]
}

// advance marks n bytes of unread() as consumed. Once the consumed prefix
// is large, it's compacted away so the buffer doesn't grow unboundedly over
// a long-lived connection that never stalls mid-frame.
func (r *readBuffer) advance(n int) {
	r.off += n
	switch {
	case r.off == len(r.bb.B):
		r.bb.B = r.bb.B[:0]
		r.off = 0
	case r.off >= 64*1024:
		copy(r.bb.B, r.bb.B[r.off:])
		r.bb.B = r.bb.B[:len(r.bb.B)-r.off]
		r.off = 0
	}
}

// reserve ensures at least n bytes of spare capacity exist past the current
// fill point, growing the backing array if necessary. This is the bounded
// increment the decoder calls on NeedMore.
func (r *readBuffer) reserve(n int) {
	if cap(r.bb.B)-len(r.bb.B) >= n {
		return
	}
	grown := make([]byte, len(r.bb.B), len(r.bb.B)+n)
	copy(grown, r.bb.B)
	r.bb.B = grown
}

// seed appends bytes directly to the buffer's fill, used once at handshake
// time to hand over bytes the HTTP response parser read from the socket but
// never consumed — the first bytes of the first WebSocket frame.
func (r *readBuffer) seed(b []byte) {
	r.bb.B = append(r.bb.B, b...)
}

// fill reads once from rd into the buffer's spare capacity, growing it
// first if there is none, and extends the fill length by what was read.
func (r *readBuffer) fill(rd io.Reader) (int, error) {
	if cap(r.bb.B) == len(r.bb.B) {
		r.reserve(headerReserve)
	}
	n, err := rd.Read(r.bb.B[len(r.bb.B):cap(r.bb.B)])
	r.bb.B = r.bb.B[:len(r.bb.B)+n]
	return n, err
}
