// Package errors provides structured error types for the Yal runtime host.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the ABI type involved, the field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindOutOfBounds).
//		Path("argv", "3").
//		ABIType("String").
//		Detail("argument pointer 0x%x outside memory", ptr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseMemory, offset, length, size)
//	err := errors.AllocationFailed(errors.PhaseAlloc, 64)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
