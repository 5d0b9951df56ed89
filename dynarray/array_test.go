package dynarray

import (
	"context"
	"encoding/binary"
	"testing"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/memory"
)

// bumpHandler allocates from a region of mem and never reuses space.
type bumpHandler struct {
	mem    yalrt.Memory
	sizes  map[uint32]int64
	next   uint32
	end    uint32
	allocs int
	frees  int
}

func newBump(mem yalrt.Memory, start, end uint32) *bumpHandler {
	return &bumpHandler{mem: mem, sizes: make(map[uint32]int64), next: start, end: end}
}

func (h *bumpHandler) Allocate(_ context.Context, size int64, _ uint32) (uint32, error) {
	ptr := abi.AlignTo(h.next, 8)
	if int64(ptr)+size > int64(h.end) {
		return 0, nil
	}
	h.next = ptr + uint32(size)
	h.sizes[ptr] = size
	h.allocs++
	return ptr, nil
}

func (h *bumpHandler) Resize(ctx context.Context, block uint32, size int64, data uint32) (uint32, error) {
	ptr, err := h.Allocate(ctx, size, data)
	if err != nil || ptr == 0 {
		return 0, err
	}
	n := h.sizes[block]
	if size < n {
		n = size
	}
	old, err := h.mem.Read(block, uint32(n))
	if err != nil {
		return 0, err
	}
	if err := h.mem.Write(ptr, append([]byte(nil), old...)); err != nil {
		return 0, err
	}
	delete(h.sizes, block)
	return ptr, nil
}

func (h *bumpHandler) Free(_ context.Context, block uint32, _ uint32) error {
	delete(h.sizes, block)
	h.frees++
	return nil
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func setup(t *testing.T) (*memory.Linear, *abi.Registry, *bumpHandler, abi.Allocator) {
	t.Helper()
	mem := memory.NewLinear(2, 2)
	reg := abi.NewRegistry()
	h := newBump(mem, 4096, 2*65536)
	proc := reg.Register(abi.Dispatch(h))
	return mem, reg, h, abi.Allocator{Data: 0x10, Proc: proc}
}

func TestArray_AppendGrowth(t *testing.T) {
	ctx := context.Background()
	mem, reg, h, alloc := setup(t)

	arr := New(mem, abi.Wasm32, reg, 64, 4, 4)
	if err := arr.Init(alloc); err != nil {
		t.Fatal(err)
	}

	for i := uint32(0); i < 100; i++ {
		if err := arr.Append(ctx, u32(i)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
		d, err := arr.Load()
		if err != nil {
			t.Fatal(err)
		}
		if d.Count > d.Capacity {
			t.Fatalf("count %d exceeds capacity %d", d.Count, d.Capacity)
		}
		if d.Count != int64(i)+1 {
			t.Fatalf("count: got %d, want %d", d.Count, i+1)
		}
	}

	for i := int64(0); i < 100; i++ {
		b, err := arr.Get(i)
		if err != nil {
			t.Fatal(err)
		}
		if got := binary.LittleEndian.Uint32(b); got != uint32(i) {
			t.Fatalf("element %d: got %d", i, got)
		}
	}

	capacity, _ := arr.Cap()
	if capacity != 128 {
		t.Errorf("capacity after 100 appends: got %d, want 128", capacity)
	}
	// 4, 8, 16, 32, 64, 128
	if h.allocs != 6 {
		t.Errorf("allocator calls: got %d, want 6", h.allocs)
	}
}

func TestArray_UsesOwnAllocator(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewLinear(2, 2)
	reg := abi.NewRegistry()
	first := newBump(mem, 4096, 65536)
	second := newBump(mem, 65536, 2*65536)
	procA := reg.Register(abi.Dispatch(first))
	procB := reg.Register(abi.Dispatch(second))

	a := New(mem, abi.Wasm32, reg, 64, 8, 8)
	b := New(mem, abi.Wasm32, reg, 128, 8, 8)
	if err := a.Init(abi.Allocator{Proc: procA}); err != nil {
		t.Fatal(err)
	}
	if err := b.Init(abi.Allocator{Proc: procB}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if err := a.Append(ctx, []byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Append(ctx, []byte{1}); err != nil {
		t.Fatal(err)
	}

	if first.allocs != 3 || second.allocs != 1 {
		t.Errorf("allocs: first %d, second %d", first.allocs, second.allocs)
	}

	if err := a.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if first.frees != 1 || second.frees != 0 {
		t.Errorf("frees: first %d, second %d", first.frees, second.frees)
	}

	d, _ := a.Load()
	if d.Count != 0 || d.Capacity != 0 || d.Data != 0 {
		t.Errorf("released record: %+v", d)
	}
	if d.Allocator.Proc != procA {
		t.Error("release must keep the allocator binding")
	}
}

func TestArray_GrowthFailureLeavesRecord(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewLinear(1, 1)
	reg := abi.NewRegistry()
	h := newBump(mem, 4096, 4096+16)
	alloc := abi.Allocator{Proc: reg.Register(abi.Dispatch(h))}

	arr := New(mem, abi.Wasm32, reg, 64, 4, 4)
	if err := arr.Init(alloc); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := arr.Append(ctx, u32(uint32(i))); err != nil {
			t.Fatal(err)
		}
	}
	before, _ := arr.Load()

	if err := arr.Append(ctx, u32(99)); err == nil {
		t.Fatal("expected allocation failure")
	}
	after, _ := arr.Load()
	if after != before {
		t.Errorf("record changed on failure: %+v -> %+v", before, after)
	}
}

func TestArray_UnboundAllocator(t *testing.T) {
	mem := memory.NewLinear(1, 1)
	arr := New(mem, abi.Wasm32, abi.NewRegistry(), 64, 4, 4)
	if err := arr.Init(abi.Allocator{}); err != nil {
		t.Fatal(err)
	}
	if err := arr.Append(context.Background(), u32(1)); err == nil {
		t.Error("expected error appending without an allocator")
	}
}

func TestArray_SetTruncateShrink(t *testing.T) {
	ctx := context.Background()
	mem, reg, h, alloc := setup(t)

	arr := New(mem, abi.Wasm32, reg, 64, 4, 4)
	if err := arr.Init(alloc); err != nil {
		t.Fatal(err)
	}
	for i := uint32(0); i < 6; i++ {
		if err := arr.Append(ctx, u32(i)); err != nil {
			t.Fatal(err)
		}
	}

	if err := arr.Set(2, u32(42)); err != nil {
		t.Fatal(err)
	}
	b, _ := arr.Get(2)
	if binary.LittleEndian.Uint32(b) != 42 {
		t.Errorf("Set: got %v", b)
	}
	if err := arr.Set(6, u32(1)); err == nil {
		t.Error("expected out of range error")
	}
	if err := arr.Append(ctx, make([]byte, 5)); err == nil {
		t.Error("expected error for oversized element")
	}

	if err := arr.Truncate(3); err != nil {
		t.Fatal(err)
	}
	if n, _ := arr.Len(); n != 3 {
		t.Errorf("len after truncate: %d", n)
	}
	if err := arr.Truncate(4); err == nil {
		t.Error("expected error truncating past count")
	}

	if err := arr.Shrink(ctx); err != nil {
		t.Fatal(err)
	}
	d, _ := arr.Load()
	if d.Capacity != 3 || d.Count != 3 {
		t.Errorf("after shrink: %+v", d)
	}
	b, _ = arr.Get(2)
	if binary.LittleEndian.Uint32(b) != 42 {
		t.Error("shrink lost contents")
	}

	if err := arr.Truncate(0); err != nil {
		t.Fatal(err)
	}
	if err := arr.Shrink(ctx); err != nil {
		t.Fatal(err)
	}
	if h.frees != 1 {
		t.Errorf("shrinking an empty array should free it, frees=%d", h.frees)
	}
}

func TestArray_Reserve(t *testing.T) {
	ctx := context.Background()
	mem, reg, h, alloc := setup(t)

	arr := New(mem, abi.Wasm32, reg, 64, 16, 8)
	if err := arr.Init(alloc); err != nil {
		t.Fatal(err)
	}
	if err := arr.Reserve(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if c, _ := arr.Cap(); c != 10 {
		t.Errorf("cap: got %d, want 10", c)
	}
	if err := arr.Reserve(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if h.allocs != 1 {
		t.Errorf("reserve below capacity should not allocate: %d", h.allocs)
	}
}

func TestArray_DetectsCorruptRecord(t *testing.T) {
	mem, reg, _, _ := setup(t)
	l := abi.Wasm32.Layouts()
	if err := l.StoreDynamicArray(mem, 64, abi.DynamicArray{Count: 5, Capacity: 2, Data: 8}); err != nil {
		t.Fatal(err)
	}
	arr := New(mem, abi.Wasm32, reg, 64, 4, 4)
	if _, err := arr.Len(); err == nil {
		t.Error("expected invariant violation")
	}
}
