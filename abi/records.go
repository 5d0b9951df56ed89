package abi

import (
	"math"
	"strconv"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// String is a non-owning view over Count bytes at Data. The bytes are not
// NUL terminated and belong to whoever supplied them.
type String struct {
	Count int64
	Data  uint32
}

// NewString returns a view over n bytes at addr.
func NewString(addr uint32, n int) String {
	return String{Count: int64(n), Data: addr}
}

// Validate checks the String invariants: a non-negative count and a null
// data pointer only for the empty string.
func (s String) Validate() error {
	if s.Count < 0 {
		return errors.Precondition(errors.PhaseMemory, NameString, "negative count "+strconv.FormatInt(s.Count, 10))
	}
	if s.Data == 0 && s.Count != 0 {
		return errors.Precondition(errors.PhaseMemory, NameString, "null data with non-zero count")
	}
	return nil
}

// Bytes returns the Count bytes at Data. Memories backed by wazero return a
// view of linear memory, so the result aliases the program's bytes.
func (s String) Bytes(mem yalrt.Memory) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Count == 0 {
		return nil, nil
	}
	if s.Count > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseMemory, s.Count, "u32 length")
	}
	return mem.Read(s.Data, uint32(s.Count))
}

// Text returns a Go copy of the viewed bytes.
func (s String) Text(mem yalrt.Memory) (string, error) {
	b, err := s.Bytes(mem)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Slice is a non-owning view over Count elements starting at Data. The
// element type is known only to the code that built the slice.
type Slice struct {
	Count int64
	Data  uint32
}

func (s Slice) Validate() error {
	if s.Count < 0 {
		return errors.Precondition(errors.PhaseMemory, NameSlice, "negative count "+strconv.FormatInt(s.Count, 10))
	}
	return nil
}

// Allocator is the capability record: opaque state plus one procedure.
// Proc is an entry in the program's procedure table, 0 when unset.
type Allocator struct {
	Data uint32
	Proc uint32
}

// IsZero reports whether no procedure is bound.
func (a Allocator) IsZero() bool {
	return a.Proc == 0
}

// DynamicArray is a growable buffer that owns Data and must release it
// through its own Allocator.
type DynamicArray struct {
	Count     int64
	Data      uint32
	Capacity  int64
	Allocator Allocator
}

func (d DynamicArray) Validate() error {
	if d.Count < 0 || d.Capacity < 0 {
		return errors.Precondition(errors.PhaseMemory, NameDynamicArray, "negative count or capacity")
	}
	if d.Count > d.Capacity {
		return errors.Precondition(errors.PhaseMemory, NameDynamicArray,
			"count "+strconv.FormatInt(d.Count, 10)+" exceeds capacity "+strconv.FormatInt(d.Capacity, 10))
	}
	if d.Data == 0 && d.Capacity != 0 {
		return errors.Precondition(errors.PhaseMemory, NameDynamicArray, "null data with non-zero capacity")
	}
	return nil
}

// LoadString reads a String record at addr.
func (l *Layouts) LoadString(mem yalrt.Memory, addr uint32) (String, error) {
	count, data, err := l.loadCountData(mem, addr, l.String)
	return String{Count: count, Data: data}, err
}

// StoreString writes s as a String record at addr.
func (l *Layouts) StoreString(mem yalrt.Memory, addr uint32, s String) error {
	return l.storeCountData(mem, addr, l.String, s.Count, s.Data)
}

// LoadSlice reads a Slice record at addr.
func (l *Layouts) LoadSlice(mem yalrt.Memory, addr uint32) (Slice, error) {
	count, data, err := l.loadCountData(mem, addr, l.Slice)
	return Slice{Count: count, Data: data}, err
}

// StoreSlice writes s as a Slice record at addr.
func (l *Layouts) StoreSlice(mem yalrt.Memory, addr uint32, s Slice) error {
	return l.storeCountData(mem, addr, l.Slice, s.Count, s.Data)
}

// LoadAllocator reads an Allocator record at addr.
func (l *Layouts) LoadAllocator(mem yalrt.Memory, addr uint32) (Allocator, error) {
	data, err := l.LoadPtr(mem, addr+l.Allocator.Offset(FieldData))
	if err != nil {
		return Allocator{}, err
	}
	proc, err := l.LoadPtr(mem, addr+l.Allocator.Offset(FieldProc))
	if err != nil {
		return Allocator{}, err
	}
	return Allocator{Data: data, Proc: proc}, nil
}

// StoreAllocator writes a as an Allocator record at addr.
func (l *Layouts) StoreAllocator(mem yalrt.Memory, addr uint32, a Allocator) error {
	if err := l.StorePtr(mem, addr+l.Allocator.Offset(FieldData), a.Data); err != nil {
		return err
	}
	return l.StorePtr(mem, addr+l.Allocator.Offset(FieldProc), a.Proc)
}

// LoadDynamicArray reads a DynamicArray record at addr.
func (l *Layouts) LoadDynamicArray(mem yalrt.Memory, addr uint32) (DynamicArray, error) {
	info := l.DynamicArray
	count, data, err := l.loadCountData(mem, addr, info)
	if err != nil {
		return DynamicArray{}, err
	}
	capacity, err := mem.ReadU64(addr + info.Offset(FieldCapacity))
	if err != nil {
		return DynamicArray{}, err
	}
	alloc, err := l.LoadAllocator(mem, addr+info.Offset(FieldAllocator))
	if err != nil {
		return DynamicArray{}, err
	}
	return DynamicArray{
		Count:     count,
		Data:      data,
		Capacity:  int64(capacity),
		Allocator: alloc,
	}, nil
}

// StoreDynamicArray writes d as a DynamicArray record at addr.
func (l *Layouts) StoreDynamicArray(mem yalrt.Memory, addr uint32, d DynamicArray) error {
	info := l.DynamicArray
	if err := l.storeCountData(mem, addr, info, d.Count, d.Data); err != nil {
		return err
	}
	if err := mem.WriteU64(addr+info.Offset(FieldCapacity), uint64(d.Capacity)); err != nil {
		return err
	}
	return l.StoreAllocator(mem, addr+info.Offset(FieldAllocator), d.Allocator)
}

func (l *Layouts) loadCountData(mem yalrt.Memory, addr uint32, info Info) (int64, uint32, error) {
	count, err := mem.ReadU64(addr + info.Offset(FieldCount))
	if err != nil {
		return 0, 0, err
	}
	data, err := l.LoadPtr(mem, addr+info.Offset(FieldData))
	if err != nil {
		return 0, 0, err
	}
	return int64(count), data, nil
}

func (l *Layouts) storeCountData(mem yalrt.Memory, addr uint32, info Info, count int64, data uint32) error {
	if err := mem.WriteU64(addr+info.Offset(FieldCount), uint64(count)); err != nil {
		return err
	}
	return l.StorePtr(mem, addr+info.Offset(FieldData), data)
}

// LoadPtr reads a pointer of the target width at addr.
func (l *Layouts) LoadPtr(mem yalrt.Memory, addr uint32) (uint32, error) {
	if l.Target.PtrSize == 4 {
		return mem.ReadU32(addr)
	}
	v, err := mem.ReadU64(addr)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, errors.Overflow(errors.PhaseMemory, v, "addressable pointer")
	}
	return uint32(v), nil
}

// StorePtr writes ptr with the target width at addr.
func (l *Layouts) StorePtr(mem yalrt.Memory, addr, ptr uint32) error {
	if l.Target.PtrSize == 4 {
		return mem.WriteU32(addr, ptr)
	}
	return mem.WriteU64(addr, uint64(ptr))
}
