package abi

import (
	"math"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// Codec reads and writes values of T at fixed addresses. It supplies the
// element type a Slice leaves implicit.
type Codec[T any] interface {
	Size() uint32
	Align() uint32
	Load(mem yalrt.Memory, addr uint32) (T, error)
	Store(mem yalrt.Memory, addr uint32, v T) error
}

// Stride is the distance between consecutive elements of c.
func Stride[T any](c Codec[T]) uint32 {
	return AlignTo(c.Size(), c.Align())
}

type stringCodec struct{ l *Layouts }

// StringCodec encodes String records with the layouts of l.
func StringCodec(l *Layouts) Codec[String] {
	return stringCodec{l: l}
}

func (c stringCodec) Size() uint32  { return c.l.String.Size }
func (c stringCodec) Align() uint32 { return c.l.String.Align }

func (c stringCodec) Load(mem yalrt.Memory, addr uint32) (String, error) {
	return c.l.LoadString(mem, addr)
}

func (c stringCodec) Store(mem yalrt.Memory, addr uint32, v String) error {
	return c.l.StoreString(mem, addr, v)
}

// Int64Codec encodes s64 elements.
type Int64Codec struct{}

func (Int64Codec) Size() uint32  { return 8 }
func (Int64Codec) Align() uint32 { return 8 }

func (Int64Codec) Load(mem yalrt.Memory, addr uint32) (int64, error) {
	v, err := mem.ReadU64(addr)
	return int64(v), err
}

func (Int64Codec) Store(mem yalrt.Memory, addr uint32, v int64) error {
	return mem.WriteU64(addr, uint64(v))
}

// Uint8Codec encodes u8 elements.
type Uint8Codec struct{}

func (Uint8Codec) Size() uint32  { return 1 }
func (Uint8Codec) Align() uint32 { return 1 }

func (Uint8Codec) Load(mem yalrt.Memory, addr uint32) (uint8, error) {
	return mem.ReadU8(addr)
}

func (Uint8Codec) Store(mem yalrt.Memory, addr uint32, v uint8) error {
	return mem.WriteU8(addr, v)
}

// Float32Codec encodes f32 elements.
type Float32Codec struct{}

func (Float32Codec) Size() uint32  { return 4 }
func (Float32Codec) Align() uint32 { return 4 }

func (Float32Codec) Load(mem yalrt.Memory, addr uint32) (float32, error) {
	v, err := mem.ReadU32(addr)
	return math.Float32frombits(v), err
}

func (Float32Codec) Store(mem yalrt.Memory, addr uint32, v float32) error {
	return mem.WriteU32(addr, math.Float32bits(v))
}

// ElementAt loads element i of s.
func ElementAt[T any](mem yalrt.Memory, s Slice, c Codec[T], i int64) (T, error) {
	var zero T
	if err := s.Validate(); err != nil {
		return zero, err
	}
	if i < 0 || i >= s.Count {
		return zero, errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
			ABIType(NameSlice).
			Value(i).
			Detail("index %d out of range (count %d)", i, s.Count).
			Build()
	}
	addr, err := elementAddr(s.Data, Stride(c), i)
	if err != nil {
		return zero, err
	}
	return c.Load(mem, addr)
}

// Elements loads every element of s.
func Elements[T any](mem yalrt.Memory, s Slice, c Codec[T]) ([]T, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Count == 0 {
		return nil, nil
	}
	stride := Stride(c)
	if _, err := elementAddr(s.Data, stride, s.Count-1); err != nil {
		return nil, err
	}

	out := make([]T, s.Count)
	for i := range out {
		v, err := c.Load(mem, s.Data+uint32(i)*stride)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// StoreElements writes values contiguously at addr and returns the Slice
// describing them.
func StoreElements[T any](mem yalrt.Memory, addr uint32, c Codec[T], values []T) (Slice, error) {
	stride := Stride(c)
	if len(values) > 0 {
		if _, err := elementAddr(addr, stride, int64(len(values)-1)); err != nil {
			return Slice{}, err
		}
	}
	for i, v := range values {
		if err := c.Store(mem, addr+uint32(i)*stride, v); err != nil {
			return Slice{}, err
		}
	}
	return Slice{Count: int64(len(values)), Data: addr}, nil
}

func elementAddr(base, stride uint32, i int64) (uint32, error) {
	if i > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseMemory, i, "u32 index")
	}
	off, ok := SafeMulU32(uint32(i), stride)
	if !ok {
		return 0, errors.Overflow(errors.PhaseMemory, i, "u32 offset")
	}
	addr, ok := SafeAddU32(base, off)
	if !ok {
		return 0, errors.Overflow(errors.PhaseMemory, i, "u32 address")
	}
	return addr, nil
}
