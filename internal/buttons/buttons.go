package buttons

import (
	"context"
	"encoding/binary"
	"sync"
)

type Event string

const (
	Cycle Event = "cycle"
	Exit  Event = "exit"
)

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopButtons struct {
	ch   chan Event
	once sync.Once
}

func NewNoopButtons() *NoopButtons { return &NoopButtons{ch: make(chan Event)} }

func (n *NoopButtons) Start(ctx context.Context) error { return nil }
func (n *NoopButtons) Stop() error                     { n.once.Do(func() { close(n.ch) }); return nil }
func (n *NoopButtons) Events() <-chan Event            { return n.ch }

// Linux input-event-codes.h
const (
	evKey = 0x01

	keyEnter = 28
	keySpace = 57
	keyF4    = 62
	btnLeft  = 0x110
	btnTouch = 0x14a
)

// Classify maps a raw evdev record to an event. Only presses count;
// releases (0) and autorepeat (2) are ignored.
func Classify(typ, code uint16, value int32) (Event, bool) {
	if typ != evKey || value != 1 {
		return "", false
	}
	switch code {
	case keyF4:
		return Exit, true
	case keyEnter, keySpace, btnLeft, btnTouch:
		return Cycle, true
	default:
		return "", false
	}
}

// Decode walks buf as a sequence of input_event records
// (timeval + u16 type + u16 code + s32 value) and returns the mapped events.
// A trailing partial record is ignored.
func Decode(buf []byte, timevalSize int) []Event {
	size := timevalSize + 8
	var out []Event
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off : off+size]
		typ := binary.LittleEndian.Uint16(rec[timevalSize : timevalSize+2])
		code := binary.LittleEndian.Uint16(rec[timevalSize+2 : timevalSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[timevalSize+4 : timevalSize+8]))
		if ev, ok := Classify(typ, code, value); ok {
			out = append(out, ev)
		}
	}
	return out
}
