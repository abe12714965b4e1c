package xrecord

import (
	"fmt"

	"github.com/BurntSushi/xgb/record"
)

// SelectorKind is the event category a Selector ranges over.
type SelectorKind int

const (
	// DeviceEvents are input events as generated by the server (pointer
	// motion, buttons, keys).
	DeviceEvents SelectorKind = iota
	// DeliveredEvents are core events as delivered to clients.
	DeliveredEvents
)

func (k SelectorKind) String() string {
	switch k {
	case DeviceEvents:
		return "device"
	case DeliveredEvents:
		return "delivered"
	default:
		return fmt.Sprintf("SelectorKind(%d)", int(k))
	}
}

// Selector names the events a recording context intercepts. It is a value
// type and cannot change after construction.
type Selector struct {
	kind  SelectorKind
	first byte
	last  byte
}

// DeviceEvent selects the single device event code.
func DeviceEvent(code byte) Selector {
	return Selector{kind: DeviceEvents, first: code, last: code}
}

// DeliveredEvent selects the single delivered event code.
func DeliveredEvent(code byte) Selector {
	return Selector{kind: DeliveredEvents, first: code, last: code}
}

// Kind returns the selected category.
func (s Selector) Kind() SelectorKind { return s.kind }

// Bounds returns the inclusive code range.
func (s Selector) Bounds() (first, last byte) { return s.first, s.last }

// Range builds the protocol range that CreateContext expects.
func (s Selector) Range() record.Range {
	var r record.Range
	span := record.Range8{First: s.first, Last: s.last}
	switch s.kind {
	case DeviceEvents:
		r.DeviceEvents = span
	case DeliveredEvents:
		r.DeliveredEvents = span
	}
	return r
}

func (s Selector) String() string {
	return fmt.Sprintf("%s[%d..%d]", s.kind, s.first, s.last)
}
