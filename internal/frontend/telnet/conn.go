package telnet

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet command bytes (RFC 854) and the options the tray negotiates.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	GA   byte = 249
	NOP  byte = 241
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds one input line; longer lines are rejected whole.
const MaxLineLength = 1024

// ErrLineTooLong is returned by ReadLine when a line exceeds MaxLineLength.
var ErrLineTooLong = errors.New("telnet: input line too long")

type iacState int

const (
	stateData iacState = iota
	stateCommand
	stateOption
	stateSubneg
	stateSubnegIAC
)

// iacFilter strips Telnet command sequences from a byte stream one byte at
// a time. An escaped IAC (IAC IAC) yields a single literal 0xFF.
type iacFilter struct {
	state iacState
}

// feed consumes b and reports the data byte it produces, if any.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stateCommand:
		switch b {
		case IAC:
			f.state = stateData
			return IAC, true
		case WILL, WONT, DO, DONT:
			f.state = stateOption
		case SB:
			f.state = stateSubneg
		default:
			f.state = stateData
		}
	case stateOption:
		f.state = stateData
	case stateSubneg:
		if b == IAC {
			f.state = stateSubnegIAC
		}
	case stateSubnegIAC:
		if b == SE {
			f.state = stateData
		} else {
			f.state = stateSubneg
		}
	default:
		if b == IAC {
			f.state = stateCommand
			return 0, false
		}
		return b, true
	}
	return 0, false
}

// filterIAC removes Telnet command sequences from input.
//
// Postcondition: len(result) <= len(input); input without 0xFF is returned unchanged.
func filterIAC(input []byte) []byte {
	var f iacFilter
	out := make([]byte, 0, len(input))
	for _, b := range input {
		if d, ok := f.feed(b); ok {
			out = append(out, d)
		}
	}
	return out
}

// Conn is one Telnet client connection. Writes are serialized so paced
// reveals and command output never interleave mid-line.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	filter iacFilter

	writeMu sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw with Telnet handling. Zero timeouts disable deadlines.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate announces suppress-go-ahead so line-mode clients send whole lines.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next input line without its terminator. Telnet
// commands and control characters are dropped and backspace edits the line.
//
// Postcondition: a non-nil error is returned on EOF, timeout or ErrLineTooLong.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	var line []byte
	tooLong := false
	for {
		raw, err := c.reader.ReadByte()
		if err != nil {
			return string(line), err
		}
		b, ok := c.filter.feed(raw)
		if !ok {
			continue
		}
		switch {
		case b == '\n':
			return c.finish(line, tooLong)
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return c.finish(line, tooLong)
		case b == '\b' || b == 0x7f:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b < 0x20 && b != '\t', b == IAC:
		case len(line) >= MaxLineLength:
			tooLong = true
		default:
			line = append(line, b)
		}
	}
}

func (c *Conn) finish(line []byte, tooLong bool) (string, error) {
	if tooLong {
		return "", ErrLineTooLong
	}
	return string(line), nil
}

// Write sends data as-is.
func (c *Conn) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text terminated by CRLF. Embedded newlines are
// normalized to CRLF so multi-line output renders on every client.
func (c *Conn) WriteLine(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\r\n")
	return c.Write([]byte(text + "\r\n"))
}

// Writef formats and sends one line.
func (c *Conn) Writef(format string, args ...any) error {
	return c.WriteLine(fmt.Sprintf(format, args...))
}

// WritePrompt sends prompt without a line terminator.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
