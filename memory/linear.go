package memory

import (
	"encoding/binary"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// Linear is a little-endian address space on the Go heap. Unlike a guest
// memory it is not shared with compiled code; host programs use it directly.
// Linear is not safe for concurrent use.
type Linear struct {
	buf      []byte
	maxPages uint32
}

// NewLinear returns a memory of pages pages that may grow to maxPages.
// maxPages of 0 means the 32-bit limit.
func NewLinear(pages, maxPages uint32) *Linear {
	if maxPages == 0 || maxPages > 65536 {
		maxPages = 65536
	}
	if pages > maxPages {
		pages = maxPages
	}
	return &Linear{
		buf:      make([]byte, uint64(pages)*yalrt.PageSize),
		maxPages: maxPages,
	}
}

func (m *Linear) bounds(offset uint32, length uint64) error {
	if uint64(offset)+length > uint64(len(m.buf)) {
		return errors.OutOfBounds(errors.PhaseMemory, uint64(offset), length, m.Size())
	}
	return nil
}

// Read returns a view of the requested bytes. The view aliases the memory
// and is invalidated by Grow.
func (m *Linear) Read(offset uint32, length uint32) ([]byte, error) {
	if err := m.bounds(offset, uint64(length)); err != nil {
		return nil, err
	}
	return m.buf[offset : uint64(offset)+uint64(length) : uint64(offset)+uint64(length)], nil
}

func (m *Linear) Write(offset uint32, data []byte) error {
	if err := m.bounds(offset, uint64(len(data))); err != nil {
		return err
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *Linear) ReadU8(offset uint32) (uint8, error) {
	if err := m.bounds(offset, 1); err != nil {
		return 0, err
	}
	return m.buf[offset], nil
}

func (m *Linear) ReadU32(offset uint32) (uint32, error) {
	if err := m.bounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.buf[offset:]), nil
}

func (m *Linear) ReadU64(offset uint32) (uint64, error) {
	if err := m.bounds(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.buf[offset:]), nil
}

func (m *Linear) WriteU8(offset uint32, value uint8) error {
	if err := m.bounds(offset, 1); err != nil {
		return err
	}
	m.buf[offset] = value
	return nil
}

func (m *Linear) WriteU32(offset uint32, value uint32) error {
	if err := m.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.buf[offset:], value)
	return nil
}

func (m *Linear) WriteU64(offset uint32, value uint64) error {
	if err := m.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.buf[offset:], value)
	return nil
}

// Size returns the size in bytes. A full 4 GiB memory reports 0, matching
// wazero's uint32 size.
func (m *Linear) Size() uint32 {
	return uint32(len(m.buf))
}

func (m *Linear) Grow(deltaPages uint32) (uint32, error) {
	prev := uint32(uint64(len(m.buf)) / yalrt.PageSize)
	if uint64(prev)+uint64(deltaPages) > uint64(m.maxPages) {
		return 0, errors.New(errors.PhaseMemory, errors.KindAllocation).
			Detail("cannot grow %d pages by %d (max %d)", prev, deltaPages, m.maxPages).
			Build()
	}
	if deltaPages == 0 {
		return prev, nil
	}
	grown := make([]byte, uint64(prev+deltaPages)*yalrt.PageSize)
	copy(grown, m.buf)
	m.buf = grown
	return prev, nil
}

var (
	_ yalrt.Memory      = (*Linear)(nil)
	_ yalrt.MemorySizer = (*Linear)(nil)
	_ yalrt.Grower      = (*Linear)(nil)
)
