package xrecord

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
)

// Source is an enabled recording as seen by an observer loop.
type Source interface {
	// Ready is signalled when ProcessReplies has buffered work.
	Ready() <-chan struct{}
	// ProcessReplies dispatches buffered events without blocking.
	ProcessReplies() error
	// Close tears the recording down and releases its connections.
	Close() error
}

// Conns holds the two connections a recording needs: control for context
// administration and data for the intercepted stream.
type Conns struct {
	Control *xgb.Conn
	Data    *Stream
}

// OpenConns opens the control and data connections to display.
func OpenConns(display string) (*Conns, error) {
	control, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to open control connection: %w", err)
	}
	data, err := DialStream(display)
	if err != nil {
		control.Close()
		return nil, fmt.Errorf("failed to open data connection: %w", err)
	}
	return &Conns{Control: control, Data: data}, nil
}

// Close closes data then control, the reverse of opening order.
func (c *Conns) Close() error {
	err := c.Data.Close()
	c.Control.Close()
	return err
}

// Recording is a Session bundled with the connections it was built on.
type Recording struct {
	conns   *Conns
	session *Session
}

var _ Source = (*Recording)(nil)

func (r *Recording) Ready() <-chan struct{} { return r.session.Ready() }

func (r *Recording) ProcessReplies() error { return r.session.ProcessReplies() }

// Close frees the context before the connections go away.
func (r *Recording) Close() error {
	return errors.Join(r.session.Close(), r.conns.Close())
}

// Recorder opens recordings against one display.
type Recorder struct {
	display string
}

// NewRecorder returns a Recorder for display; empty means $DISPLAY.
func NewRecorder(display string) *Recorder {
	return &Recorder{display: display}
}

// Display returns the configured display name.
func (r *Recorder) Display() string { return r.display }

// Supported reports nil when the display is reachable and has RECORD.
func (r *Recorder) Supported() error {
	c, err := xgb.NewConnDisplay(r.display)
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	defer c.Close()
	return Check(c)
}

// Open establishes both connections, creates a context for sel and enables
// it with handler.
func (r *Recorder) Open(sel Selector, handler Handler) (Source, error) {
	conns, err := OpenConns(r.display)
	if err != nil {
		return nil, err
	}
	if err := Check(conns.Control); err != nil {
		conns.Close()
		return nil, err
	}
	session, err := NewSession(conns.Control, conns.Data, sel)
	if err != nil {
		conns.Close()
		return nil, err
	}
	if err := session.Enable(handler); err != nil {
		session.Close()
		conns.Close()
		return nil, err
	}
	return &Recording{conns: conns, session: session}, nil
}
