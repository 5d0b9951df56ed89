package yalrt

// Memory is a byte-addressable view of a program's address space.
// Multi-byte values are little endian.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of the memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Grower is implemented by memories that can be extended by whole pages.
// Grow returns the previous size in pages.
type Grower interface {
	Grow(deltaPages uint32) (uint32, error)
}

// PageSize is the growth granularity of a linear memory.
const PageSize = 65536
