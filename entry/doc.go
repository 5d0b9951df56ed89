// Package entry implements the process entry point of a compiled Yal program.
//
// The entry point runs once per process. It turns the host's argument
// vector into a Slice of String and calls the program's Main with it:
//
//	host args ──Stage──▶ argc, argv (NUL-terminated bytes in program memory)
//	          ──Marshal─▶ Slice{count, data} over a bounded String backing store
//	          ──Main────▶ compiled code, may never return
//
// # Argument Area
//
// Staged arguments live in one region of program memory that is never freed:
//
//	[ backing store: MaxArgs String records ][ argv: argc pointers ][ bytes... ]
//
// The region is appended to memories that can grow, or supplied through
// Config.Area.
//
// # Truncation
//
// At most MaxArgs (default 128) arguments are marshaled. When the host supplies
// more, arguments 0..MaxArgs-1 are kept and the rest are dropped silently; the
// count dropped is logged at debug level.
//
// # Argument Lengths
//
// Each String aliases the staged bytes of its argument. Its count is the
// number of bytes before the terminating NUL, scanned with a counter of its
// own so the argument index is never disturbed by the scan.
package entry
