package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"

	yerrors "github.com/wippyai/yal-runtime/errors"
)

// memoryWASM is a minimal WASM module with 1 page of memory (max 2) exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x04, 0x01, 0x01, 0x01, 0x02, // memory section: min 1, max 2
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory"
	0x02, 0x00, // kind: memory, index 0
}

func newWrapped(t *testing.T) *Wrapper {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}

	mem := Wrap(mod.ExportedMemory("memory"))
	if mem == nil {
		t.Fatal("expected non-nil wrapped memory")
	}
	return mem
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestWrapper_ReadWrite(t *testing.T) {
	mem := newWrapped(t)

	data := []byte{1, 2, 3, 4}
	if err := mem.Write(16, data); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	read, err := mem.Read(16, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i, b := range read {
		if b != data[i] {
			t.Errorf("byte %d: expected %d, got %d", i, data[i], b)
		}
	}

	// Read returns a view: writes through memory are visible in it.
	if err := mem.WriteU8(16, 9); err != nil {
		t.Fatal(err)
	}
	if read[0] != 9 {
		t.Errorf("expected view to alias memory, got %d", read[0])
	}
}

func TestWrapper_Integers(t *testing.T) {
	mem := newWrapped(t)

	if err := mem.WriteU32(0, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteU64(8, 0x0102030405060708); err != nil {
		t.Fatal(err)
	}

	b, _ := mem.ReadU8(0)
	if b != 0xef {
		t.Errorf("little endian low byte: got 0x%x", b)
	}
	v32, _ := mem.ReadU32(0)
	if v32 != 0xdeadbeef {
		t.Errorf("u32: got 0x%x", v32)
	}
	v64, _ := mem.ReadU64(8)
	if v64 != 0x0102030405060708 {
		t.Errorf("u64: got 0x%x", v64)
	}
}

func TestWrapper_OutOfBounds(t *testing.T) {
	mem := newWrapped(t)

	tests := []struct {
		op   func() error
		name string
	}{
		{func() error { _, err := mem.Read(65536, 1); return err }, "read"},
		{func() error { return mem.Write(65535, []byte{1, 2}) }, "write"},
		{func() error { _, err := mem.ReadU64(65530); return err }, "read u64"},
		{func() error { return mem.WriteU32(65534, 1) }, "write u32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, &yerrors.Error{Phase: yerrors.PhaseMemory, Kind: yerrors.KindOutOfBounds}) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWrapper_Grow(t *testing.T) {
	mem := newWrapped(t)

	prev, err := mem.Grow(1)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	if prev != 1 {
		t.Errorf("previous pages: got %d, want 1", prev)
	}
	if mem.Size() != 2*65536 {
		t.Errorf("size: got %d", mem.Size())
	}

	if _, err := mem.Grow(1); err == nil {
		t.Error("expected error growing past max")
	}
}
