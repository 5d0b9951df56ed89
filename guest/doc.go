// Package guest runs compiled Yal programs as wasm32 core modules on wazero.
//
// A program module must export its linear memory as "memory" and its entry
// procedure as "Main". Main receives the argument Slice by value, flattened
// into its two fields:
//
//	(func (export "Main") (param $count i64) (param $data i32))
//
// A module may also export an allocator trampoline that dispatches through
// its function table, so the host can call Allocator procedures by proc_ptr:
//
//	(func (export "yal_allocator_call")
//	    (param $proc i32) (param $size i64) (param $block i32) (param $data i32)
//	    (result i32))
//
// Usage:
//
//	eng, err := guest.NewEngine(ctx, nil)
//	defer eng.Close(ctx)
//
//	mod, err := eng.Load(ctx, wasmBytes)
//	inst, err := mod.Instantiate(ctx)
//	defer inst.Close(ctx)
//
//	code, err := entry.NewRunner(entry.Config{}).Run(ctx, inst, os.Args)
//
// Calls are interrupted when their context is done, so a Main that never
// returns can be bounded with a deadline.
//
// # Thread Safety
//
// Engine and Module are safe for concurrent use. Instance is not.
package guest
