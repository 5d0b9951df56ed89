package abi

import (
	"sync"

	"go.bytecodealliance.org/wit"
)

// Target describes the pointer width of the address space records live in.
type Target struct {
	Name    string
	PtrSize uint32
}

var (
	// Wasm32 is a 32-bit linear memory, the address space used by guest programs.
	Wasm32 = Target{Name: "wasm32", PtrSize: 4}
	// Native64 matches the records emitted for a 64-bit host process.
	Native64 = Target{Name: "native64", PtrSize: 8}
)

func (t Target) pointerType() wit.Type {
	if t.PtrSize == 8 {
		return wit.U64{}
	}
	return wit.U32{}
}

var layoutCache sync.Map // Target -> *Layouts

// Layouts returns the record layouts for t. Results are cached per target.
func (t Target) Layouts() *Layouts {
	if cached, ok := layoutCache.Load(t); ok {
		return cached.(*Layouts)
	}
	l, err := computeLayouts(t)
	if err != nil {
		// The record set is fixed; a failure here is a programming error.
		panic(err)
	}
	actual, _ := layoutCache.LoadOrStore(t, l)
	return actual.(*Layouts)
}
