package entry

import (
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
)

// DefaultMaxArgs is the number of String slots in the backing store.
const DefaultMaxArgs = 128

// DefaultMaxArgLen bounds the terminator scan of a single argument.
const DefaultMaxArgLen = 1 << 20

// Area is a region of program memory reserved for staged arguments.
type Area struct {
	Base uint32
	Size uint32
}

// End returns the first address past the area.
func (a Area) End() uint64 {
	return uint64(a.Base) + uint64(a.Size)
}

// Config holds entry point configuration. The zero value is usable.
type Config struct {
	// Area places staged arguments in a fixed region instead of growing memory.
	Area *Area

	// Target selects record layouts. Zero means abi.Wasm32.
	Target abi.Target

	// MaxArgs caps the marshaled argument count. 0 means DefaultMaxArgs.
	MaxArgs int

	// MaxArgLen bounds the length scan of one argument. 0 means DefaultMaxArgLen.
	MaxArgLen uint32
}

func (c Config) target() abi.Target {
	if c.Target.PtrSize == 0 {
		return abi.Wasm32
	}
	return c.Target
}

func (c Config) maxArgs() int {
	if c.MaxArgs <= 0 {
		return DefaultMaxArgs
	}
	return c.MaxArgs
}

func (c Config) maxArgLen() uint32 {
	if c.MaxArgLen == 0 {
		return DefaultMaxArgLen
	}
	return c.MaxArgLen
}

// Validate rejects configurations that cannot be honoured.
func (c Config) Validate() error {
	if c.MaxArgs < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max args must not be negative")
	}
	if t := c.Target; t.PtrSize != 0 && t.PtrSize != 4 && t.PtrSize != 8 {
		return errors.InvalidInput(errors.PhaseConfig, "pointer size must be 4 or 8")
	}
	if c.Area != nil && c.Area.End() > 1<<32 {
		return errors.InvalidInput(errors.PhaseConfig, "argument area exceeds 32-bit address space")
	}
	return nil
}
