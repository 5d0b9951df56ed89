package memory

import (
	"github.com/tetratelabs/wazero/api"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// Wrap adapts a wazero memory. It returns nil for a nil memory.
func Wrap(mem api.Memory) *Wrapper {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the runtime memory interfaces.
type Wrapper struct {
	Mem api.Memory
}

// Read returns a view of length bytes at offset. The view aliases linear
// memory and is invalidated by Grow.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.outOfBounds(offset, uint64(length))
	}
	return data, nil
}

func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.outOfBounds(offset, uint64(len(data)))
	}
	return nil
}

func (m *Wrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 1)
	}
	return v, nil
}

func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 4)
	}
	return v, nil
}

func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.outOfBounds(offset, 8)
	}
	return v, nil
}

func (m *Wrapper) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return m.outOfBounds(offset, 1)
	}
	return nil
}

func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.outOfBounds(offset, 4)
	}
	return nil
}

func (m *Wrapper) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return m.outOfBounds(offset, 8)
	}
	return nil
}

func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Grow extends the memory by deltaPages, failing past the module's maximum.
func (m *Wrapper) Grow(deltaPages uint32) (uint32, error) {
	prev, ok := m.Mem.Grow(deltaPages)
	if !ok {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("cannot grow memory of %d bytes by %d pages", m.Mem.Size(), deltaPages).
			Build()
	}
	return prev, nil
}

func (m *Wrapper) outOfBounds(offset uint32, length uint64) error {
	return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), length, m.Mem.Size())
}

var (
	_ yalrt.Memory      = (*Wrapper)(nil)
	_ yalrt.MemorySizer = (*Wrapper)(nil)
	_ yalrt.Grower      = (*Wrapper)(nil)
)
