// Package osc implements the wire-format primitives of Open Sound Control
// 1.0: messages, bundles, typed arguments, and NTP timetags. No
// third-party OSC library exists among the example repos surveyed for
// this codebase (the closest name match, go-osc52, is an unrelated
// terminal-escape-sequence library) — see DESIGN.md for the full
// grounding note. The binary framing below follows the teacher's general
// idiom for hand-rolled wire codecs (encoding/binary, explicit bounds
// checks, fmt.Errorf-wrapped parse errors), as seen in its Pandar40P
// packet parser.
package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ArgType identifies the wire type of an OSC argument. Only the three
// types used by the TUIO 2D profiles are supported.
type ArgType byte

const (
	TypeInt32   ArgType = 'i'
	TypeFloat32 ArgType = 'f'
	TypeString  ArgType = 's'
)

// Argument is a single typed OSC value.
type Argument struct {
	Type  ArgType
	Int   int32
	Float float32
	Str   string
}

// Int returns an int32-typed Argument.
func Int(v int32) Argument { return Argument{Type: TypeInt32, Int: v} }

// Float returns a float32-typed Argument.
func Float(v float32) Argument { return Argument{Type: TypeFloat32, Float: v} }

// String returns a string-typed Argument.
func String(v string) Argument { return Argument{Type: TypeString, Str: v} }

// Message is an OSC address plus an ordered list of typed arguments.
type Message struct {
	Address string
	Args    []Argument
}

// Timetag is an OSC 64-bit NTP timestamp: 32-bit seconds since the NTP
// epoch (1900-01-01) plus a 32-bit fractional part.
type Timetag struct {
	Seconds  uint32
	Fraction uint32
}

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01) and the Unix epoch (1970-01-01).
const ntpEpochOffset = 2208988800

// Now returns the current wall-clock time encoded as an OSC timetag.
func Now() Timetag {
	return FromTime(time.Now())
}

// FromTime converts a time.Time to an OSC timetag.
func FromTime(t time.Time) Timetag {
	secs := t.Unix() + ntpEpochOffset
	frac := uint32((float64(t.Nanosecond()) / 1e9) * (1 << 32))
	return Timetag{Seconds: uint32(secs), Fraction: frac}
}

// Bundle is an OSC container of one timetag and an ordered sequence of
// member messages. Nested bundles are not produced by the encoder; the
// decoder ignores any it encounters, per spec §4.3.
type Bundle struct {
	Timetag  Timetag
	Messages []Message
}

// padLen returns the length, including the original, padded up to the
// next multiple of 4 with at least one trailing NUL (OSC-string rule).
func padLen(n int) int {
	padded := n + 1
	if r := padded % 4; r != 0 {
		padded += 4 - r
	}
	return padded
}

func writeOSCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	pad := padLen(len(s)) - len(s)
	buf.Write(make([]byte, pad))
}

func readOSCString(data []byte, offset int) (string, int, error) {
	if offset >= len(data) {
		return "", 0, fmt.Errorf("osc: string read past end of packet")
	}
	end := bytes.IndexByte(data[offset:], 0)
	if end < 0 {
		return "", 0, fmt.Errorf("osc: unterminated string")
	}
	s := string(data[offset : offset+end])
	next := offset + padLen(len(s))
	if next > len(data) {
		return "", 0, fmt.Errorf("osc: string padding past end of packet")
	}
	return s, next, nil
}

// Marshal encodes a Message to its OSC wire bytes.
func (m Message) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	writeOSCString(&buf, m.Address)

	tags := make([]byte, 0, len(m.Args)+1)
	tags = append(tags, ',')
	for _, a := range m.Args {
		tags = append(tags, byte(a.Type))
	}
	writeOSCString(&buf, string(tags))

	for _, a := range m.Args {
		switch a.Type {
		case TypeInt32:
			if err := binary.Write(&buf, binary.BigEndian, a.Int); err != nil {
				return nil, fmt.Errorf("osc: encode int32 argument: %w", err)
			}
		case TypeFloat32:
			if err := binary.Write(&buf, binary.BigEndian, math.Float32bits(a.Float)); err != nil {
				return nil, fmt.Errorf("osc: encode float32 argument: %w", err)
			}
		case TypeString:
			writeOSCString(&buf, a.Str)
		default:
			return nil, fmt.Errorf("osc: unsupported argument type %q", a.Type)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalMessage decodes a raw OSC message from data.
func UnmarshalMessage(data []byte) (Message, error) {
	addr, offset, err := readOSCString(data, 0)
	if err != nil {
		return Message{}, fmt.Errorf("osc: read address: %w", err)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return Message{}, fmt.Errorf("osc: address %q missing leading '/'", addr)
	}

	tags, offset, err := readOSCString(data, offset)
	if err != nil {
		return Message{}, fmt.Errorf("osc: read type tags: %w", err)
	}
	if len(tags) == 0 || tags[0] != ',' {
		return Message{}, fmt.Errorf("osc: type tag string %q missing leading ','", tags)
	}

	msg := Message{Address: addr}
	for _, tag := range []byte(tags[1:]) {
		switch ArgType(tag) {
		case TypeInt32:
			if offset+4 > len(data) {
				return Message{}, fmt.Errorf("osc: truncated int32 argument")
			}
			v := int32(binary.BigEndian.Uint32(data[offset : offset+4]))
			msg.Args = append(msg.Args, Int(v))
			offset += 4
		case TypeFloat32:
			if offset+4 > len(data) {
				return Message{}, fmt.Errorf("osc: truncated float32 argument")
			}
			bits := binary.BigEndian.Uint32(data[offset : offset+4])
			msg.Args = append(msg.Args, Float(math.Float32frombits(bits)))
			offset += 4
		case TypeString:
			s, next, err := readOSCString(data, offset)
			if err != nil {
				return Message{}, fmt.Errorf("osc: read string argument: %w", err)
			}
			msg.Args = append(msg.Args, String(s))
			offset = next
		default:
			return Message{}, fmt.Errorf("osc: unsupported type tag %q", tag)
		}
	}
	return msg, nil
}

// Marshal encodes a Bundle to its OSC wire bytes.
func (b Bundle) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	writeOSCString(&buf, "#bundle")
	if err := binary.Write(&buf, binary.BigEndian, b.Timetag.Seconds); err != nil {
		return nil, fmt.Errorf("osc: encode timetag seconds: %w", err)
	}
	if err := binary.Write(&buf, binary.BigEndian, b.Timetag.Fraction); err != nil {
		return nil, fmt.Errorf("osc: encode timetag fraction: %w", err)
	}

	for _, m := range b.Messages {
		data, err := m.Marshal()
		if err != nil {
			return nil, fmt.Errorf("osc: encode bundle element: %w", err)
		}
		if err := binary.Write(&buf, binary.BigEndian, int32(len(data))); err != nil {
			return nil, fmt.Errorf("osc: encode element length: %w", err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// IsBundle reports whether a raw packet is an OSC bundle (as opposed to a
// bare message), based on its leading bytes.
func IsBundle(data []byte) bool {
	return bytes.HasPrefix(data, []byte("#bundle\x00"))
}

// UnmarshalBundle decodes a raw OSC bundle from data. Nested bundle
// elements are parsed to validate framing but discarded: spec §4.3 directs
// the TUIO decoder to ignore them.
func UnmarshalBundle(data []byte) (Bundle, error) {
	if !IsBundle(data) {
		return Bundle{}, fmt.Errorf("osc: packet is not a bundle")
	}
	_, offset, err := readOSCString(data, 0)
	if err != nil {
		return Bundle{}, fmt.Errorf("osc: read bundle id: %w", err)
	}

	if offset+8 > len(data) {
		return Bundle{}, fmt.Errorf("osc: truncated bundle timetag")
	}
	tag := Timetag{
		Seconds:  binary.BigEndian.Uint32(data[offset : offset+4]),
		Fraction: binary.BigEndian.Uint32(data[offset+4 : offset+8]),
	}
	offset += 8

	bundle := Bundle{Timetag: tag}
	for offset < len(data) {
		if offset+4 > len(data) {
			return Bundle{}, fmt.Errorf("osc: truncated bundle element length")
		}
		length := int(int32(binary.BigEndian.Uint32(data[offset : offset+4])))
		offset += 4
		if length < 0 || offset+length > len(data) {
			return Bundle{}, fmt.Errorf("osc: bundle element length %d out of range", length)
		}
		element := data[offset : offset+length]
		offset += length

		if IsBundle(element) {
			continue // nested bundles are ignored, per spec §4.3
		}
		msg, err := UnmarshalMessage(element)
		if err != nil {
			return Bundle{}, fmt.Errorf("osc: decode bundle element: %w", err)
		}
		bundle.Messages = append(bundle.Messages, msg)
	}
	return bundle, nil
}
