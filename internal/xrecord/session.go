package xrecord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/record"
)

const (
	recordMajorVersion = 1
	recordMinorVersion = 13

	// allClients is the RECORD client spec for every current and future
	// client.
	allClients record.ClientSpec = 3
)

// ErrUnsupported reports that the X server lacks the RECORD extension.
var ErrUnsupported = errors.New("xrecord: RECORD extension not supported")

// Handler receives decoded events. It runs on the goroutine that calls
// ProcessReplies.
type Handler func(Event)

// Check initialises RECORD on the control connection and confirms the
// server answers a version query.
func Check(control *xgb.Conn) error {
	if err := record.Init(control); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if _, err := record.QueryVersion(control, recordMajorVersion, recordMinorVersion).Reply(); err != nil {
		return fmt.Errorf("%w: version query failed: %v", ErrUnsupported, err)
	}
	return nil
}

// majorOpcode returns the RECORD opcode assigned on control. Check must have
// succeeded first.
func majorOpcode(control *xgb.Conn) (byte, bool) {
	control.ExtLock.RLock()
	defer control.ExtLock.RUnlock()
	op, ok := control.Extensions["RECORD"]
	return op, ok
}

// Session is a record context created on a control connection and
// delivered over a data stream. Requests on the control connection are all
// checked, so each one completes before the next is sent.
type Session struct {
	control *xgb.Conn
	data    *Stream
	id      record.Context
	sel     Selector
	handler Handler

	disableOnce sync.Once
	disableErr  error
	closeOnce   sync.Once
}

// NewSession creates a context on control intercepting sel from all
// clients.
func NewSession(control *xgb.Conn, data *Stream, sel Selector) (*Session, error) {
	id, err := record.NewContextId(control)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate record context id: %w", err)
	}
	err = record.CreateContextChecked(control, id, 0,
		1, 1,
		[]record.ClientSpec{allClients},
		[]record.Range{sel.Range()},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create record context for %s: %w", sel, err)
	}
	return &Session{control: control, data: data, id: id, sel: sel}, nil
}

// Selector returns the events this session intercepts.
func (s *Session) Selector() Selector { return s.sel }

// Enable starts delivery on the data stream. handler is invoked from
// ProcessReplies only.
func (s *Session) Enable(handler Handler) error {
	op, ok := majorOpcode(s.control)
	if !ok {
		return ErrUnsupported
	}
	s.handler = handler
	return s.data.Enable(op, uint32(s.id))
}

// Ready is signalled when ProcessReplies has work.
func (s *Session) Ready() <-chan struct{} {
	return s.data.Ready()
}

// ProcessReplies dispatches every buffered event to the handler and
// returns without waiting for more. A non-nil error means the stream has
// ended.
func (s *Session) ProcessReplies() error {
	events, err := s.data.Drain()
	if s.handler != nil {
		for _, ev := range events {
			s.handler(ev)
		}
	}
	return err
}

// Disable stops interception. Safe to call more than once.
func (s *Session) Disable() error {
	s.disableOnce.Do(func() {
		s.disableErr = record.DisableContextChecked(s.control, s.id).Check()
	})
	return s.disableErr
}

// Close disables and frees the context. The connections stay open and
// must be closed by their owner afterwards.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		disableErr := s.Disable()
		freeErr := record.FreeContextChecked(s.control, s.id).Check()
		err = errors.Join(disableErr, freeErr)
	})
	return err
}
