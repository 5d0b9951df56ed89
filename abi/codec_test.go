package abi

import (
	"testing"

	"github.com/wippyai/yal-runtime/memory"
)

func TestElements_Strings(t *testing.T) {
	l := Wasm32.Layouts()
	mem := memory.NewLinear(1, 1)
	codec := StringCodec(l)

	words := []string{"prog", "hello", "world"}
	var strs []String
	addr := uint32(1024)
	for _, w := range words {
		if err := mem.Write(addr, []byte(w)); err != nil {
			t.Fatal(err)
		}
		strs = append(strs, NewString(addr, len(w)))
		addr += uint32(len(w))
	}

	slice, err := StoreElements(mem, 64, codec, strs)
	if err != nil {
		t.Fatal(err)
	}
	if slice.Count != 3 || slice.Data != 64 {
		t.Fatalf("slice: %+v", slice)
	}

	got, err := Elements(mem, slice, codec)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		text, err := s.Text(mem)
		if err != nil {
			t.Fatal(err)
		}
		if text != words[i] {
			t.Errorf("element %d: got %q, want %q", i, text, words[i])
		}
	}

	second, err := ElementAt(mem, slice, codec, 1)
	if err != nil {
		t.Fatal(err)
	}
	if second.Count != 5 {
		t.Errorf("element 1 count: got %d", second.Count)
	}
	if _, err := ElementAt(mem, slice, codec, 3); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := ElementAt(mem, slice, codec, -1); err == nil {
		t.Error("expected out of range error for negative index")
	}
}

func TestElements_Scalars(t *testing.T) {
	mem := memory.NewLinear(1, 1)

	ints, err := StoreElements[int64](mem, 0, Int64Codec{}, []int64{-1, 0, 1 << 40})
	if err != nil {
		t.Fatal(err)
	}
	gotInts, err := Elements[int64](mem, ints, Int64Codec{})
	if err != nil {
		t.Fatal(err)
	}
	if gotInts[0] != -1 || gotInts[2] != 1<<40 {
		t.Errorf("ints: %v", gotInts)
	}

	floats, err := StoreElements[float32](mem, 100, Float32Codec{}, []float32{6.2831852, -1})
	if err != nil {
		t.Fatal(err)
	}
	gotFloats, err := Elements[float32](mem, floats, Float32Codec{})
	if err != nil {
		t.Fatal(err)
	}
	if gotFloats[0] != 6.2831852 || gotFloats[1] != -1 {
		t.Errorf("floats: %v", gotFloats)
	}

	bytesSlice, err := StoreElements[uint8](mem, 200, Uint8Codec{}, []uint8{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := mem.Read(200, 3)
	if raw[2] != 3 || bytesSlice.Count != 3 {
		t.Errorf("bytes: %v", raw)
	}
}

func TestElements_Empty(t *testing.T) {
	mem := memory.NewLinear(1, 1)

	got, err := Elements[int64](mem, Slice{}, Int64Codec{})
	if err != nil || got != nil {
		t.Errorf("empty slice: %v, %v", got, err)
	}
	if _, err := Elements[int64](mem, Slice{Count: -2}, Int64Codec{}); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestElements_Overflow(t *testing.T) {
	mem := memory.NewLinear(1, 1)

	huge := Slice{Count: 1 << 31, Data: 0xffff0000}
	if _, err := Elements[int64](mem, huge, Int64Codec{}); err == nil {
		t.Error("expected overflow error")
	}
}

func TestStride(t *testing.T) {
	if got := Stride(StringCodec(Wasm32.Layouts())); got != 16 {
		t.Errorf("string stride: got %d", got)
	}
	if got := Stride[uint8](Uint8Codec{}); got != 1 {
		t.Errorf("u8 stride: got %d", got)
	}
}
