package xrecord

import (
	"encoding/binary"

	"github.com/BurntSushi/xgb/xproto"
)

// eventSize is the fixed length of every core protocol event.
const eventSize = 32

// sendEventBit is set in the event code of events produced by SendEvent.
const sendEventBit = 0x80

// Event is one decoded record intercepted by a recording session. The
// concrete type is MotionEvent, ConfigureEvent or OtherEvent.
type Event interface {
	eventCode() byte
}

// MotionEvent is a recorded MotionNotify.
type MotionEvent struct {
	Root      uint32
	Window    uint32
	RootX     int16
	RootY     int16
	State     uint16
	SendEvent bool
}

// ConfigureEvent is a recorded ConfigureNotify.
type ConfigureEvent struct {
	Window           uint32
	X                int16
	Y                int16
	Width            uint16
	Height           uint16
	OverrideRedirect bool
	SendEvent        bool
}

// OtherEvent is any record this package does not interpret.
type OtherEvent struct {
	Code byte
	Raw  [eventSize]byte
}

func (MotionEvent) eventCode() byte    { return xproto.MotionNotify }
func (ConfigureEvent) eventCode() byte { return xproto.ConfigureNotify }
func (e OtherEvent) eventCode() byte   { return e.Code }

// swapFields lists the 16 and 32 bit field offsets of the layouts we decode,
// so foreign-endian records can be normalised before decoding.
var swapFields = map[byte]struct{ u16, u32 []int }{
	xproto.MotionNotify: {
		u16: []int{2, 20, 22, 24, 26, 28},
		u32: []int{4, 8, 12, 16},
	},
	xproto.ConfigureNotify: {
		u16: []int{2, 16, 18, 20, 22, 24},
		u32: []int{4, 8, 12},
	},
}

// Decode converts one 32-byte record into a typed event. swapped reports
// that the record is in the opposite byte order to this connection, which
// is always little-endian.
func Decode(rec []byte, swapped bool) Event {
	var raw [eventSize]byte
	copy(raw[:], rec)
	code := raw[0] &^ sendEventBit
	sent := raw[0]&sendEventBit != 0

	if len(rec) < eventSize {
		return OtherEvent{Code: code, Raw: raw}
	}

	buf := raw[:]
	if swapped {
		layout, ok := swapFields[code]
		if !ok {
			return OtherEvent{Code: code, Raw: raw}
		}
		buf = normalize(raw, layout.u16, layout.u32)
	}

	switch code {
	case xproto.MotionNotify:
		ev := xproto.MotionNotifyEventNew(buf).(xproto.MotionNotifyEvent)
		return MotionEvent{
			Root:      uint32(ev.Root),
			Window:    uint32(ev.Event),
			RootX:     ev.RootX,
			RootY:     ev.RootY,
			State:     ev.State,
			SendEvent: sent,
		}
	case xproto.ConfigureNotify:
		ev := xproto.ConfigureNotifyEventNew(buf).(xproto.ConfigureNotifyEvent)
		return ConfigureEvent{
			Window:           uint32(ev.Window),
			X:                ev.X,
			Y:                ev.Y,
			Width:            ev.Width,
			Height:           ev.Height,
			OverrideRedirect: ev.OverrideRedirect,
			SendEvent:        sent,
		}
	default:
		return OtherEvent{Code: code, Raw: raw}
	}
}

// DecodeAll splits intercepted protocol data into events. Trailing bytes
// shorter than one event are dropped.
func DecodeAll(data []byte, swapped bool) []Event {
	events := make([]Event, 0, len(data)/eventSize)
	for len(data) >= eventSize {
		events = append(events, Decode(data[:eventSize], swapped))
		data = data[eventSize:]
	}
	return events
}

func normalize(raw [eventSize]byte, u16, u32 []int) []byte {
	out := raw
	for _, off := range u16 {
		binary.LittleEndian.PutUint16(out[off:], binary.BigEndian.Uint16(raw[off:]))
	}
	for _, off := range u32 {
		binary.LittleEndian.PutUint32(out[off:], binary.BigEndian.Uint32(raw[off:]))
	}
	return out[:]
}
