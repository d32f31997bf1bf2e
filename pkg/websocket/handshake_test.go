package websocket

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func withTestNonceSource(t *testing.T, r io.Reader) {
	t.Helper()
	orig := nonceSource
	nonceSource = r
	t.Cleanup(func() { nonceSource = orig })
}

func TestNewNonceDeterministic(t *testing.T) {
	withTestNonceSource(t, strings.NewReader("0123456789abcdef0123456789abcdef"))
	n1, err := newNonce()
	if err != nil {
		t.Fatalf("newNonce() error = %v", err)
	}

	withTestNonceSource(t, strings.NewReader("0123456789abcdef0123456789abcdef"))
	n2, err := newNonce()
	if err != nil {
		t.Fatalf("newNonce() error = %v", err)
	}

	if n1 != n2 {
		t.Errorf("newNonce() not stable for the same source: %q != %q", n1, n2)
	}
}

func TestComputeAcceptKey(t *testing.T) {
	// The example from https://datatracker.ietf.org/doc/html/rfc6455#section-1.3.
	nonce := "dGhlIHNhbXBsZSBub25jZQ=="
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := computeAcceptKey(nonce); got != want {
		t.Errorf("computeAcceptKey(%q) = %q, want %q", nonce, got, want)
	}
}

func TestBuildUpgradeRequest(t *testing.T) {
	u, err := url.Parse("ws://example.com/chat?a=b")
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	extra := http.Header{"X-Custom": {"yes"}}

	if err := buildUpgradeRequest(w, u, "noncevalue", extra); err != nil {
		t.Fatalf("buildUpgradeRequest() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"GET /chat?a=b HTTP/1.1\r\n",
		"Host: example.com\r\n",
		"Upgrade: websocket\r\n",
		"Connection: Upgrade\r\n",
		"Sec-WebSocket-Key: noncevalue\r\n",
		"Sec-WebSocket-Version: 13\r\n",
		"X-Custom: yes\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("buildUpgradeRequest() output missing %q; got:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\r\n\r\n") {
		t.Errorf("buildUpgradeRequest() output doesn't end with a blank line; got:\n%s", got)
	}
}

func TestReadUpgradeResponse(t *testing.T) {
	nonce := "dGhlIHNhbXBsZSBub25jZQ=="
	accept := computeAcceptKey(nonce)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{
			name: "happy_path",
			raw: "HTTP/1.1 101 Switching Protocols\r\n" +
				"Upgrade: websocket\r\n" +
				"Connection: Upgrade\r\n" +
				"Sec-WebSocket-Accept: " + accept + "\r\n\r\n",
		},
		{
			name: "wrong_status",
			raw: "HTTP/1.1 200 OK\r\n" +
				"Upgrade: websocket\r\n" +
				"Connection: Upgrade\r\n" +
				"Sec-WebSocket-Accept: " + accept + "\r\n\r\n",
			wantErr: ErrBadStatus,
		},
		{
			name: "missing_upgrade_header",
			raw: "HTTP/1.1 101 Switching Protocols\r\n" +
				"Connection: Upgrade\r\n" +
				"Sec-WebSocket-Accept: " + accept + "\r\n\r\n",
			wantErr: ErrMissingUpgradeHeader,
		},
		{
			name: "bad_accept_key",
			raw: "HTTP/1.1 101 Switching Protocols\r\n" +
				"Upgrade: websocket\r\n" +
				"Connection: Upgrade\r\n" +
				"Sec-WebSocket-Accept: wrong==\r\n\r\n",
			wantErr: ErrBadAcceptKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.raw))
			_, err := readUpgradeResponse(r, nonce)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("readUpgradeResponse() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("readUpgradeResponse() error = nil, want %v", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("readUpgradeResponse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadUpgradeResponseClosedBeforeResponse(t *testing.T) {
	// The peer hangs up mid-status-line, before a full response ever arrives.
	r := bufio.NewReader(strings.NewReader("HTTP/1.1 101 Swit"))
	_, err := readUpgradeResponse(r, "dGhlIHNhbXBsZSBub25jZQ==")
	if !errors.Is(err, ErrClosedBeforeResponse) {
		t.Fatalf("readUpgradeResponse() error = %v, want ErrClosedBeforeResponse", err)
	}
}

func TestReadUpgradeResponsePreservesBufferedBytes(t *testing.T) {
	nonce := "dGhlIHNhbXBsZSBub25jZQ=="
	accept := computeAcceptKey(nonce)

	raw := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n" +
		"\x81\x02hi" // The start of the server's first frame, eagerly sent.

	r := bufio.NewReader(strings.NewReader(raw))
	if _, err := readUpgradeResponse(r, nonce); err != nil {
		t.Fatalf("readUpgradeResponse() error = %v", err)
	}

	buffered := make([]byte, r.Buffered())
	if _, err := r.Read(buffered); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []byte{0x81, 0x02, 'h', 'i'}
	if !bytes.Equal(buffered, want) {
		t.Errorf("buffered bytes = %v, want %v", buffered, want)
	}
}
