package guest

// Minimal wasm binary encoder for test programs. Every length used here
// fits in one LEB128 byte.

const (
	i32 = 0x7f
	i64 = 0x7e
	f32 = 0x7d
)

func wasmModule(sections ...[]byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func section(id byte, items ...[]byte) []byte {
	content := []byte{byte(len(items))}
	for _, it := range items {
		content = append(content, it...)
	}
	return append([]byte{id, byte(len(content))}, content...)
}

func funcType(params []byte, results []byte) []byte {
	out := []byte{0x60, byte(len(params))}
	out = append(out, params...)
	out = append(out, byte(len(results)))
	return append(out, results...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func export(n string, kind, index byte) []byte {
	return append(name(n), kind, index)
}

func body(code ...byte) []byte {
	return append([]byte{byte(len(code))}, code...)
}

func typeSection(types ...[]byte) []byte  { return section(1, types...) }
func funcSection(types ...[]byte) []byte  { return section(3, types...) }
func exportSection(ex ...[]byte) []byte   { return section(7, ex...) }
func codeSection(bodies ...[]byte) []byte { return section(10, bodies...) }

// memorySection declares one memory of the given pages with no maximum.
func memorySection(pages byte) []byte {
	return section(5, []byte{0x00, pages})
}

var entryType = funcType([]byte{i64, i32}, nil)

// recordingMain stores its parameters at address 0 (count) and 8 (data).
var recordingMain = body(
	0x00,             // no locals
	0x41, 0x00,       // i32.const 0
	0x20, 0x00,       // local.get 0
	0x37, 0x03, 0x00, // i64.store align=8
	0x41, 0x08, // i32.const 8
	0x20, 0x01, // local.get 1
	0x36, 0x02, 0x00, // i32.store align=4
	0x0b,
)

// loopingMain sets a float local and then loops forever.
var loopingMain = body(
	0x01, 0x01, f32, // one f32 local, index 2 after the parameters
	0x43, 0xda, 0x0f, 0xc9, 0x40, // f32.const 6.2831852
	0x21, 0x02, // local.set 2
	0x03, 0x40, // loop
	0x0c, 0x00, // br 0
	0x0b, // end loop
	0x0b,
)

var trappingMain = body(0x00, 0x00, 0x0b) // unreachable

// allocatorCall returns data + size + proc, so tests can see each parameter.
var allocatorCall = body(
	0x00,
	0x20, 0x03, // local.get data
	0x20, 0x01, // local.get size
	0xa7,       // i32.wrap_i64
	0x6a,       // i32.add
	0x20, 0x00, // local.get proc
	0x6a,       // i32.add
	0x0b,
)

func programWASM(main []byte) []byte {
	return wasmModule(
		typeSection(entryType),
		funcSection([]byte{0x00}),
		memorySection(1),
		exportSection(export("memory", 0x02, 0), export("Main", 0x00, 0)),
		codeSection(main),
	)
}

func programWithAllocatorWASM() []byte {
	return wasmModule(
		typeSection(entryType, funcType([]byte{i32, i64, i32, i32}, []byte{i32})),
		funcSection([]byte{0x00}, []byte{0x01}),
		memorySection(1),
		exportSection(
			export("memory", 0x02, 0),
			export("Main", 0x00, 0),
			export(AllocatorCallName, 0x00, 1),
		),
		codeSection(recordingMain, allocatorCall),
	)
}

func badSignatureWASM() []byte {
	return wasmModule(
		typeSection(funcType(nil, nil)),
		funcSection([]byte{0x00}),
		memorySection(1),
		exportSection(export("memory", 0x02, 0), export("Main", 0x00, 0)),
		codeSection(body(0x00, 0x0b)),
	)
}

func noMemoryWASM() []byte {
	return wasmModule(
		typeSection(entryType),
		funcSection([]byte{0x00}),
		exportSection(export("Main", 0x00, 0)),
		codeSection(body(0x00, 0x0b)),
	)
}

func badAllocatorWASM() []byte {
	return wasmModule(
		typeSection(entryType),
		funcSection([]byte{0x00}, []byte{0x00}),
		memorySection(1),
		exportSection(
			export("memory", 0x02, 0),
			export("Main", 0x00, 0),
			export(AllocatorCallName, 0x00, 1),
		),
		codeSection(body(0x00, 0x0b), body(0x00, 0x0b)),
	)
}
