package xrecord

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	byteOrderLSB = 'l'

	protocolMajor = 11
	protocolMinor = 0

	setupFailed       = 0
	setupSuccess      = 1
	setupAuthenticate = 2

	responseError = 0
	responseReply = 1

	enableContextOpcode = 5

	handshakeTimeout = 10 * time.Second

	// maxReplyWords caps the length of one reply, in 4-byte units.
	maxReplyWords = 1 << 22
)

// Reply categories of an EnableContext reply stream.
const (
	CategoryFromServer    = 0
	CategoryFromClient    = 1
	CategoryClientStarted = 2
	CategoryClientDied    = 3
	CategoryStartOfData   = 4
	CategoryEndOfData     = 5
)

// ErrEndOfData is reported once the server has closed the reply stream,
// which happens after the context is disabled.
var ErrEndOfData = errors.New("xrecord: end of recorded data")

// ErrReplyTooLarge is reported when a reply header announces more data
// than maxReplyWords.
var ErrReplyTooLarge = errors.New("xrecord: reply too large")

// ProtocolError is an X error received on the data connection.
type ProtocolError struct {
	Code     byte
	Sequence uint16
	Value    uint32
	Minor    uint16
	Major    byte
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("X error %d (request %d.%d, sequence %d, value %#x)",
		e.Code, e.Major, e.Minor, e.Sequence, e.Value)
}

// frame is one response read from the data connection.
type frame struct {
	category      byte
	clientSwapped bool
	data          []byte
}

// Stream is the data connection of a recording session. It speaks just
// enough of the X11 protocol to authenticate, enable a context and read the
// resulting reply stream, which xgb cannot deliver because it maps each
// reply to exactly one cookie.
type Stream struct {
	conn net.Conn
	rd   *bufio.Reader

	mu      sync.Mutex
	pending []Event
	err     error

	ready     chan struct{}
	done      chan struct{}
	started   bool
	closeOnce sync.Once
}

// DialStream opens a data connection to display (or $DISPLAY).
func DialStream(display string) (*Stream, error) {
	d, err := ParseDisplay(display)
	if err != nil {
		return nil, err
	}
	conn, err := d.Dial(handshakeTimeout)
	if err != nil {
		return nil, err
	}
	name, data := lookupAuth(d)
	s, err := NewStream(conn, name, data)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// NewStream performs the connection setup handshake over conn.
func NewStream(conn net.Conn, authName string, authData []byte) (*Stream, error) {
	s := &Stream{
		conn:  conn,
		rd:    bufio.NewReader(conn),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write(setupRequest(authName, authData)); err != nil {
		return nil, fmt.Errorf("failed to send connection setup: %w", err)
	}

	var head [8]byte
	if _, err := io.ReadFull(s.rd, head[:]); err != nil {
		return nil, fmt.Errorf("failed to read connection setup reply: %w", err)
	}
	extra := make([]byte, int(binary.LittleEndian.Uint16(head[6:]))*4)
	if _, err := io.ReadFull(s.rd, extra); err != nil {
		return nil, fmt.Errorf("failed to read connection setup reply: %w", err)
	}

	switch head[0] {
	case setupSuccess:
		return s, nil
	case setupFailed:
		reason := extra
		if n := int(head[1]); n <= len(reason) {
			reason = reason[:n]
		}
		return nil, fmt.Errorf("X server refused connection: %s", reason)
	case setupAuthenticate:
		return nil, fmt.Errorf("X server requires further authentication: %s", trimNUL(extra))
	default:
		return nil, fmt.Errorf("unexpected connection setup status %d", head[0])
	}
}

func setupRequest(authName string, authData []byte) []byte {
	n, d := len(authName), len(authData)
	buf := make([]byte, 12+n+pad(n)+d+pad(d))
	buf[0] = byteOrderLSB
	binary.LittleEndian.PutUint16(buf[2:], protocolMajor)
	binary.LittleEndian.PutUint16(buf[4:], protocolMinor)
	binary.LittleEndian.PutUint16(buf[6:], uint16(n))
	binary.LittleEndian.PutUint16(buf[8:], uint16(d))
	copy(buf[12:], authName)
	copy(buf[12+n+pad(n):], authData)
	return buf
}

// Enable sends EnableContext for context using the RECORD major opcode and
// waits for the StartOfData reply. Afterwards a reader goroutine buffers
// intercepted events until Close.
func (s *Stream) Enable(opcode byte, context uint32) error {
	if s.started {
		return fmt.Errorf("record stream already enabled")
	}

	var req [8]byte
	req[0] = opcode
	req[1] = enableContextOpcode
	binary.LittleEndian.PutUint16(req[2:], 2)
	binary.LittleEndian.PutUint32(req[4:], context)
	if _, err := s.conn.Write(req[:]); err != nil {
		return fmt.Errorf("failed to send EnableContext: %w", err)
	}

	for {
		f, err := s.readFrame()
		if err != nil {
			return fmt.Errorf("failed to enable record context: %w", err)
		}
		if f == nil {
			continue
		}
		if f.category == CategoryStartOfData {
			break
		}
		if f.category == CategoryEndOfData {
			return fmt.Errorf("failed to enable record context: %w", ErrEndOfData)
		}
	}

	s.started = true
	go s.readLoop()
	return nil
}

// Ready is signalled whenever new events or an error become available.
func (s *Stream) Ready() <-chan struct{} {
	return s.ready
}

// Drain returns the buffered events in arrival order and the terminal
// error, if the stream has ended. It never blocks on the connection.
func (s *Stream) Drain() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.pending
	s.pending = nil
	return events, s.err
}

// Close closes the connection and waits for the reader to exit.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
		if s.started {
			<-s.done
		}
	})
	return err
}

func (s *Stream) readLoop() {
	defer close(s.done)
	for {
		f, err := s.readFrame()
		if err != nil {
			s.fail(err)
			return
		}
		if f == nil {
			continue
		}
		switch f.category {
		case CategoryFromServer:
			if events := DecodeAll(f.data, f.clientSwapped); len(events) > 0 {
				s.push(events)
			}
		case CategoryEndOfData:
			s.fail(ErrEndOfData)
			return
		}
	}
}

func (s *Stream) push(events []Event) {
	s.mu.Lock()
	s.pending = append(s.pending, events...)
	s.mu.Unlock()
	s.signal()
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.signal()
}

func (s *Stream) signal() {
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// readFrame reads one response. Events addressed to the data connection
// itself are skipped and reported as a nil frame.
func (s *Stream) readFrame() (*frame, error) {
	var head [32]byte
	if _, err := io.ReadFull(s.rd, head[:]); err != nil {
		return nil, err
	}

	switch head[0] {
	case responseError:
		return nil, &ProtocolError{
			Code:     head[1],
			Sequence: binary.LittleEndian.Uint16(head[2:]),
			Value:    binary.LittleEndian.Uint32(head[4:]),
			Minor:    binary.LittleEndian.Uint16(head[8:]),
			Major:    head[10],
		}
	case responseReply:
		length := binary.LittleEndian.Uint32(head[4:])
		if length > maxReplyWords {
			return nil, fmt.Errorf("%w: %d words", ErrReplyTooLarge, length)
		}
		data := make([]byte, int(length)*4)
		if _, err := io.ReadFull(s.rd, data); err != nil {
			return nil, err
		}
		return &frame{
			category:      head[1],
			clientSwapped: head[9] != 0,
			data:          data,
		}, nil
	default:
		return nil, nil
	}
}

func pad(n int) int {
	return (4 - n%4) % 4
}

func trimNUL(b []byte) string {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
