// Package memory provides the address spaces the runtime reads and writes.
//
// Wrap adapts a wazero api.Memory, the linear memory of a guest program:
//
//	mem := memory.Wrap(mod.ExportedMemory("memory"))
//
// Linear is a Go-heap memory with the same page-granular growth, used by
// programs implemented on the host and by tests:
//
//	mem := memory.NewLinear(1, 16) // one page, at most sixteen
//
// Both implement yalrt.Memory, yalrt.MemorySizer and yalrt.Grower.
package memory
