package abi

import (
	"context"
	"sync"

	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// Op is the operation a single allocator call performs.
type Op uint8

const (
	OpNop Op = iota
	OpAlloc
	OpResize
	OpFree
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpResize:
		return "resize"
	case OpFree:
		return "free"
	default:
		return "nop"
	}
}

// Request is a decoded allocator call.
type Request struct {
	Size  int64
	Block uint32
	Op    Op
}

// DecodeRequest maps the (size, block) arguments of an allocator call to an
// operation. Negative sizes are rejected.
func DecodeRequest(size int64, block uint32) (Request, error) {
	switch {
	case size < 0:
		return Request{}, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			ABIType(NameAllocator).
			Value(size).
			Detail("negative size %d", size).
			Build()
	case size > 0 && block == 0:
		return Request{Op: OpAlloc, Size: size}, nil
	case size > 0:
		return Request{Op: OpResize, Size: size, Block: block}, nil
	case block != 0:
		return Request{Op: OpFree, Block: block}, nil
	default:
		return Request{Op: OpNop}, nil
	}
}

// Encode returns the (size, block) arguments that carry r.
func (r Request) Encode() (int64, uint32) {
	switch r.Op {
	case OpAlloc:
		return r.Size, 0
	case OpResize:
		return r.Size, r.Block
	case OpFree:
		return 0, r.Block
	default:
		return 0, 0
	}
}

// Proc is an allocator procedure callable from Go. data is the owning
// Allocator's Data field. A zero pointer reports failure for alloc and
// resize; err is reserved for failures of the call itself.
type Proc func(ctx context.Context, size int64, block, data uint32) (uint32, error)

// ProcTable resolves the proc_ptr of an Allocator record.
type ProcTable interface {
	Resolve(proc uint32) (Proc, error)
}

// Handler is the three-operation form of an allocator.
type Handler interface {
	Allocate(ctx context.Context, size int64, data uint32) (uint32, error)
	Resize(ctx context.Context, block uint32, size int64, data uint32) (uint32, error)
	Free(ctx context.Context, block uint32, data uint32) error
}

// Dispatch multiplexes h behind a single procedure. Invalid requests
// return a null pointer without reaching h.
func Dispatch(h Handler) Proc {
	return func(ctx context.Context, size int64, block, data uint32) (uint32, error) {
		req, err := DecodeRequest(size, block)
		if err != nil {
			yalrt.Logger().Debug("allocator request rejected", zap.Int64("size", size), zap.Uint32("block", block))
			return 0, nil
		}
		switch req.Op {
		case OpAlloc:
			return h.Allocate(ctx, req.Size, data)
		case OpResize:
			return h.Resize(ctx, req.Block, req.Size, data)
		case OpFree:
			return 0, h.Free(ctx, req.Block, data)
		default:
			return 0, nil
		}
	}
}

// Registry is a host-side procedure table. Index 0 is never assigned so that
// a zero proc_ptr always means "unset".
type Registry struct {
	procs []Proc
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{procs: []Proc{nil}}
}

// Register adds p and returns its proc_ptr.
func (r *Registry) Register(p Proc) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs = append(r.procs, p)
	return uint32(len(r.procs) - 1)
}

func (r *Registry) Resolve(proc uint32) (Proc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if proc == 0 || int(proc) >= len(r.procs) || r.procs[proc] == nil {
		return nil, errors.New(errors.PhaseAlloc, errors.KindNotFound).
			ABIType(NameAllocator).
			Value(proc).
			Detail("no procedure at proc_ptr %d", proc).
			Build()
	}
	return r.procs[proc], nil
}

// Capability is an Allocator record bound to its procedure.
type Capability struct {
	proc   Proc
	record Allocator
}

// Bind resolves the procedure of a through table.
func Bind(table ProcTable, a Allocator) (*Capability, error) {
	if table == nil {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "nil procedure table")
	}
	if a.IsZero() {
		return nil, errors.Precondition(errors.PhaseAlloc, NameAllocator, "proc_ptr is null")
	}
	proc, err := table.Resolve(a.Proc)
	if err != nil {
		return nil, err
	}
	return &Capability{proc: proc, record: a}, nil
}

// Record returns the bound Allocator record.
func (c *Capability) Record() Allocator {
	return c.record
}

// Call performs one raw call of the procedure.
func (c *Capability) Call(ctx context.Context, size int64, block uint32) (uint32, error) {
	ptr, err := c.proc(ctx, size, block, c.record.Data)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseAlloc, errors.KindTrap, err, "allocator procedure failed")
	}
	return ptr, nil
}

// Allocate returns a block of size bytes.
func (c *Capability) Allocate(ctx context.Context, size int64) (uint32, error) {
	if size <= 0 {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "allocation size must be positive")
	}
	ptr, err := c.Call(ctx, size, 0)
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size)
	}
	return ptr, nil
}

// Resize moves block to a region of size bytes. On failure block is left as is.
func (c *Capability) Resize(ctx context.Context, block uint32, size int64) (uint32, error) {
	if block == 0 {
		return c.Allocate(ctx, size)
	}
	if size <= 0 {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "resize size must be positive")
	}
	ptr, err := c.Call(ctx, size, block)
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size)
	}
	return ptr, nil
}

// Free releases block. Freeing a null block does nothing.
func (c *Capability) Free(ctx context.Context, block uint32) error {
	if block == 0 {
		return nil
	}
	_, err := c.Call(ctx, 0, block)
	return err
}
