// Package yalrt is the runtime of compiled Yal programs: the binary layout of
// the built-in records and the entry point that hands command-line arguments
// to a program's Main.
//
// A compiled program runs as a wasm32 core module. Its linear memory is the
// address space the records live in; pointers are 32-bit and multi-byte
// values are little endian.
//
// # Architecture Overview
//
//	yalrt/             Root package with the Memory interfaces and the logger
//	├── abi/           String, Slice, Allocator and DynamicArray layouts
//	├── dynarray/      Growable arrays that allocate through their own Allocator
//	├── entry/         Argument staging, marshaling and the entry point
//	├── guest/         Loading and running program modules on wazero
//	├── memory/        Memory adapters and NUL-terminated string scanning
//	├── errors/        Structured error types for debugging
//	└── cmd/yalrun/    Command-line runner
//
// # Quick Start
//
// Run a program with the process arguments:
//
//	eng, err := guest.NewEngine(ctx, &guest.Config{EnableWASI: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	mod, err := eng.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	code, err := entry.NewRunner(entry.Config{}).Run(ctx, inst, os.Args)
//	os.Exit(code)
//
// # Arguments
//
// Main receives a Slice of String. The first 128 arguments are kept and the
// rest are dropped. Each String points at the argument bytes staged by the
// host, which stay valid for the life of the process.
//
// # Logging
//
// Packages log through Logger, which discards everything until SetLogger
// installs a zap logger.
//
// # Memory Model
//
// WASM linear memory can only grow, never shrink. Arguments are staged in
// pages added to the end of memory, so they never overlap data the program
// placed there itself.
package yalrt
