// Package testutil holds helpers shared by the dice tray's integration tests.
package testutil

import (
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// DefaultTimeout bounds every read and write the TelnetClient performs.
const DefaultTimeout = 3 * time.Second

// TelnetClient drives a Telnet server from a test.
type TelnetClient struct {
	t       testing.TB
	conn    net.Conn
	pending bytes.Buffer
}

// NewTelnetClient dials addr and registers the connection for cleanup.
//
// Precondition: a server must be listening on addr.
func NewTelnetClient(t testing.TB, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until substr appears and returns everything up to and
// including it. Output past the match is kept for the next call.
func (c *TelnetClient) ReadUntil(substr string) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(DefaultTimeout))
	tmp := make([]byte, 1024)
	for {
		if i := strings.Index(c.pending.String(), substr); i >= 0 {
			return string(c.pending.Next(i + len(substr)))
		}
		n, err := c.conn.Read(tmp)
		c.pending.Write(tmp[:n])
		if err != nil && !strings.Contains(c.pending.String(), substr) {
			c.t.Fatalf("reading until %q: got %q: %v", substr, c.pending.String(), err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(DefaultTimeout))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Command sends text and reads until want appears.
func (c *TelnetClient) Command(text, want string) string {
	c.t.Helper()
	c.Send(text)
	return c.ReadUntil(want)
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
