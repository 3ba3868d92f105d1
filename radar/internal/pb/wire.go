// Package pb holds the provider's protobuf messages.
//
// Messages are encoded with protowire directly: fields are written in field
// number order, proto3 zero values are omitted, and unknown fields are skipped
// on decode. Nested messages are written whenever their pointer is set.
package pb

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType occurs when a known field arrives with an unexpected wire type.
var ErrWireType = errors.New("pb: unexpected wire type")

type appender interface {
	appendFields(e *encoder)
}

type unmarshaler interface {
	Unmarshal([]byte) error
}

func marshal(m appender) []byte {
	var e encoder
	m.appendFields(&e)
	return e.b
}

type encoder struct {
	b []byte
}

func (e *encoder) uint32(num protowire.Number, v uint32) {
	e.uint64(num, uint64(v))
}

func (e *encoder) uint64(num protowire.Number, v uint64) {
	if v == 0 {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *encoder) int32(num protowire.Number, v int32) {
	// int32 is sign extended to 64 bits on the wire
	e.uint64(num, uint64(int64(v)))
}

func (e *encoder) bool(num protowire.Number, v bool) {
	if v {
		e.uint64(num, 1)
	}
}

func (e *encoder) float32(num protowire.Number, v float32) {
	if v == 0 && !math.Signbit(float64(v)) {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed32Type)
	e.b = protowire.AppendFixed32(e.b, math.Float32bits(v))
}

func (e *encoder) float64(num protowire.Number, v float64) {
	if v == 0 && !math.Signbit(v) {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.Fixed64Type)
	e.b = protowire.AppendFixed64(e.b, math.Float64bits(v))
}

func (e *encoder) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendString(e.b, v)
}

// strings writes every element, including empty ones.
func (e *encoder) strings(num protowire.Number, vs []string) {
	for _, v := range vs {
		e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
		e.b = protowire.AppendString(e.b, v)
	}
}

// packedUint32s writes a packed repeated varint field.
func (e *encoder) packedUint32s(num protowire.Number, vs []uint32) {
	if len(vs) == 0 {
		return
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, packed)
}

func (e *encoder) packedInt32s(num protowire.Number, vs []int32) {
	if len(vs) == 0 {
		return
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, packed)
}

func (e *encoder) message(num protowire.Number, m appender) {
	e.b = protowire.AppendTag(e.b, num, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, marshal(m))
}

// decoder walks the fields of a single message.
type decoder struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func newDecoder(b []byte) *decoder {
	return &decoder{b: b}
}

// next advances to the next field tag, returning false at the end of input or on error.
func (d *decoder) next() bool {
	if d.err != nil || len(d.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return false
	}
	d.num, d.typ = num, typ
	d.b = d.b[n:]
	return true
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
	d.b = nil
}

func (d *decoder) expect(typ protowire.Type) bool {
	if d.typ != typ {
		d.fail(fmt.Errorf("%w: field %d has type %d, want %d", ErrWireType, d.num, d.typ, typ))
		return false
	}
	return true
}

func (d *decoder) varint() uint64 {
	if !d.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) uint32() uint32 { return uint32(d.varint()) }

func (d *decoder) uint64() uint64 { return d.varint() }

func (d *decoder) int32() int32 { return int32(d.varint()) }

func (d *decoder) bool() bool { return d.varint() != 0 }

func (d *decoder) float32() float32 {
	if !d.expect(protowire.Fixed32Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed32(d.b)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return 0
	}
	d.b = d.b[n:]
	return math.Float32frombits(v)
}

func (d *decoder) float64() float64 {
	if !d.expect(protowire.Fixed64Type) {
		return 0
	}
	v, n := protowire.ConsumeFixed64(d.b)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return 0
	}
	d.b = d.b[n:]
	return math.Float64frombits(v)
}

func (d *decoder) bytes() []byte {
	if !d.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return nil
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) string() string { return string(d.bytes()) }

func (d *decoder) message(m unmarshaler) {
	b := d.bytes()
	if d.err != nil {
		return
	}
	if err := m.Unmarshal(b); err != nil {
		d.fail(fmt.Errorf("field %d: %w", d.num, err))
	}
}

// uint32s appends a repeated varint field in either packed or unpacked form.
func (d *decoder) uint32s(dst []uint32) []uint32 {
	if d.typ == protowire.VarintType {
		return append(dst, d.uint32())
	}
	packed := d.bytes()
	for len(packed) > 0 && d.err == nil {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			return dst
		}
		dst = append(dst, uint32(v))
		packed = packed[n:]
	}
	return dst
}

func (d *decoder) int32s(dst []int32) []int32 {
	if d.typ == protowire.VarintType {
		return append(dst, d.int32())
	}
	packed := d.bytes()
	for len(packed) > 0 && d.err == nil {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			d.fail(protowire.ParseError(n))
			return dst
		}
		dst = append(dst, int32(v))
		packed = packed[n:]
	}
	return dst
}

// skip discards the current field.
func (d *decoder) skip() {
	n := protowire.ConsumeFieldValue(d.num, d.typ, d.b)
	if n < 0 {
		d.fail(protowire.ParseError(n))
		return
	}
	d.b = d.b[n:]
}
