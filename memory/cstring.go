package memory

import (
	"bytes"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// scanChunk bounds each read while looking for a terminator.
const scanChunk = 256

// CStringLen returns the number of bytes at addr before the first NUL.
// The scan keeps its own counter and stops after limit bytes; a missing
// terminator within limit or the memory is a precondition error.
func CStringLen(mem yalrt.Memory, addr uint32, limit uint32) (uint32, error) {
	var n uint32
	for n < limit {
		chunk := uint32(scanChunk)
		if rem := limit - n; rem < chunk {
			chunk = rem
		}
		if sizer, ok := mem.(yalrt.MemorySizer); ok {
			size := uint64(sizer.Size())
			if size == 0 {
				size = 1 << 32
			}
			if uint64(addr)+uint64(n) >= size {
				break
			}
			if avail := size - uint64(addr) - uint64(n); avail < uint64(chunk) {
				chunk = uint32(avail)
			}
		}
		if uint64(addr)+uint64(n)+uint64(chunk) > 1<<32 {
			break
		}

		data, err := mem.Read(addr+n, chunk)
		if err != nil {
			return 0, err
		}
		if i := bytes.IndexByte(data, 0); i >= 0 {
			return n + uint32(i), nil
		}
		n += chunk
	}
	return 0, errors.New(errors.PhaseMemory, errors.KindPrecondition).
		Value(addr).
		Detail("no NUL terminator within %d bytes of 0x%x", n, addr).
		Build()
}
