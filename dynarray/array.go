package dynarray

import (
	"context"
	"math"

	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
)

// MinCapacity is the capacity of the first growth of an empty array.
const MinCapacity = 4

// Array is a handle over a DynamicArray record at a fixed address.
// It is not safe for concurrent use.
type Array struct {
	mem     yalrt.Memory
	layouts *abi.Layouts
	table   abi.ProcTable
	addr    uint32
	stride  uint32
}

// New returns a handle over the record at addr holding elements of elemSize
// bytes aligned to elemAlign. Procedures named by the record are resolved
// through table.
func New(mem yalrt.Memory, target abi.Target, table abi.ProcTable, addr, elemSize, elemAlign uint32) *Array {
	stride := abi.AlignTo(elemSize, elemAlign)
	if stride == 0 {
		stride = 1
	}
	return &Array{
		mem:     mem,
		layouts: target.Layouts(),
		table:   table,
		addr:    addr,
		stride:  stride,
	}
}

// Addr returns the address of the record.
func (a *Array) Addr() uint32 {
	return a.addr
}

// Stride returns the distance between elements.
func (a *Array) Stride() uint32 {
	return a.stride
}

// Init writes an empty record bound to alloc.
func (a *Array) Init(alloc abi.Allocator) error {
	return a.layouts.StoreDynamicArray(a.mem, a.addr, abi.DynamicArray{Allocator: alloc})
}

// Load reads and validates the record.
func (a *Array) Load() (abi.DynamicArray, error) {
	d, err := a.layouts.LoadDynamicArray(a.mem, a.addr)
	if err != nil {
		return abi.DynamicArray{}, err
	}
	if err := d.Validate(); err != nil {
		return abi.DynamicArray{}, err
	}
	return d, nil
}

func (a *Array) Len() (int64, error) {
	d, err := a.Load()
	return d.Count, err
}

func (a *Array) Cap() (int64, error) {
	d, err := a.Load()
	return d.Capacity, err
}

// Slice returns a view over the live elements.
func (a *Array) Slice() (abi.Slice, error) {
	d, err := a.Load()
	if err != nil {
		return abi.Slice{}, err
	}
	return abi.Slice{Count: d.Count, Data: d.Data}, nil
}

// Reserve ensures room for at least n elements.
func (a *Array) Reserve(ctx context.Context, n int64) error {
	d, err := a.Load()
	if err != nil {
		return err
	}
	_, err = a.reserve(ctx, d, n)
	return err
}

func (a *Array) reserve(ctx context.Context, d abi.DynamicArray, n int64) (abi.DynamicArray, error) {
	if n <= d.Capacity {
		return d, nil
	}

	newCap := d.Capacity * 2
	if newCap < MinCapacity {
		newCap = MinCapacity
	}
	if newCap < n {
		newCap = n
	}
	if newCap > math.MaxUint32/int64(a.stride) {
		return d, errors.Overflow(errors.PhaseAlloc, newCap, "u32 array size")
	}

	capability, err := abi.Bind(a.table, d.Allocator)
	if err != nil {
		return d, err
	}
	data, err := capability.Resize(ctx, d.Data, newCap*int64(a.stride))
	if err != nil {
		return d, err
	}

	yalrt.Logger().Debug("dynamic array grown",
		zap.Uint32("addr", a.addr),
		zap.Int64("from", d.Capacity),
		zap.Int64("to", newCap))

	d.Data = data
	d.Capacity = newCap
	if err := a.layouts.StoreDynamicArray(a.mem, a.addr, d); err != nil {
		return d, err
	}
	return d, nil
}

// Append adds one element. elem must be exactly one stride long or shorter;
// shorter elements are zero padded.
func (a *Array) Append(ctx context.Context, elem []byte) error {
	if uint32(len(elem)) > a.stride {
		return errors.InvalidInput(errors.PhaseAlloc, "element larger than array stride")
	}
	return a.push(ctx, func(slot uint32) error {
		buf := make([]byte, a.stride)
		copy(buf, elem)
		return a.mem.Write(slot, buf)
	})
}

func (a *Array) push(ctx context.Context, store func(slot uint32) error) error {
	d, err := a.Load()
	if err != nil {
		return err
	}
	d, err = a.reserve(ctx, d, d.Count+1)
	if err != nil {
		return err
	}
	if err := store(d.Data + uint32(d.Count)*a.stride); err != nil {
		return err
	}
	d.Count++
	return a.layouts.StoreDynamicArray(a.mem, a.addr, d)
}

func (a *Array) slot(i int64) (uint32, error) {
	d, err := a.Load()
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= d.Count {
		return 0, errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
			ABIType(abi.NameDynamicArray).
			Value(i).
			Detail("index %d out of range (count %d)", i, d.Count).
			Build()
	}
	return d.Data + uint32(i)*a.stride, nil
}

// Get returns a view of element i.
func (a *Array) Get(i int64) ([]byte, error) {
	slot, err := a.slot(i)
	if err != nil {
		return nil, err
	}
	return a.mem.Read(slot, a.stride)
}

// Set overwrites element i.
func (a *Array) Set(i int64, elem []byte) error {
	if uint32(len(elem)) > a.stride {
		return errors.InvalidInput(errors.PhaseAlloc, "element larger than array stride")
	}
	slot, err := a.slot(i)
	if err != nil {
		return err
	}
	buf := make([]byte, a.stride)
	copy(buf, elem)
	return a.mem.Write(slot, buf)
}

// Truncate drops elements past n. Capacity is kept.
func (a *Array) Truncate(n int64) error {
	d, err := a.Load()
	if err != nil {
		return err
	}
	if n < 0 || n > d.Count {
		return errors.InvalidInput(errors.PhaseAlloc, "truncate length out of range")
	}
	d.Count = n
	return a.layouts.StoreDynamicArray(a.mem, a.addr, d)
}

// Shrink resizes the buffer to the live count, freeing it when empty.
func (a *Array) Shrink(ctx context.Context) error {
	d, err := a.Load()
	if err != nil {
		return err
	}
	if d.Capacity == d.Count {
		return nil
	}
	if d.Count == 0 {
		return a.Release(ctx)
	}

	capability, err := abi.Bind(a.table, d.Allocator)
	if err != nil {
		return err
	}
	data, err := capability.Resize(ctx, d.Data, d.Count*int64(a.stride))
	if err != nil {
		return err
	}
	d.Data = data
	d.Capacity = d.Count
	return a.layouts.StoreDynamicArray(a.mem, a.addr, d)
}

// Release frees the buffer through the record's allocator and leaves an
// empty record still bound to that allocator.
func (a *Array) Release(ctx context.Context) error {
	d, err := a.Load()
	if err != nil {
		return err
	}
	if d.Data != 0 {
		capability, err := abi.Bind(a.table, d.Allocator)
		if err != nil {
			return err
		}
		if err := capability.Free(ctx, d.Data); err != nil {
			return err
		}
	}
	return a.layouts.StoreDynamicArray(a.mem, a.addr, abi.DynamicArray{Allocator: d.Allocator})
}
