// Package abi defines the runtime records every compiled Yal procedure agrees on.
//
// Four records make up the runtime ABI:
//
//	String        count s64, data *u8          non-owning byte view, not NUL terminated
//	Slice         count s64, data *void        non-owning, type-erased element run
//	Allocator     data *void, proc_ptr         single-dispatch allocation capability
//	DynamicArray  count, data, capacity, alloc owned growable buffer
//
// # Layout
//
// Records are described as WIT record types and laid out with C struct rules:
// each field is aligned to its own alignment and the record size is rounded up
// to its largest field alignment. Pointer width depends on the Target:
//
//	Record         Wasm32 size/align   Native64 size/align
//	─────────────────────────────────────────────────────
//	String         16/8                16/8
//	Slice          16/8                16/8
//	Allocator      8/4                 16/8
//	DynamicArray   32/8                40/8
//
// # Allocator Procedure
//
// An Allocator carries one procedure, proc(size, block, data) -> ptr, where data
// is always the allocator's own data field. The request is encoded in the first
// two arguments:
//
//	size > 0, block == 0   allocate size bytes, 0 on failure
//	size > 0, block != 0   resize block to size bytes, 0 on failure (block stays valid)
//	size == 0, block != 0  free block, returns 0
//	size == 0, block == 0  no-op, returns 0
//	size < 0               invalid, returns 0
//
// Capability wraps a bound procedure behind Allocate, Resize and Free.
package abi
