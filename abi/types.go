package abi

import "go.bytecodealliance.org/wit"

// Record names as they appear in emitted code.
const (
	NameString       = "String"
	NameSlice        = "Slice"
	NameAllocator    = "Allocator"
	NameDynamicArray = "DynamicArray"
)

// Field names shared by the records.
const (
	FieldCount     = "count"
	FieldData      = "data"
	FieldCapacity  = "capacity"
	FieldAllocator = "allocator"
	FieldProc      = "proc_ptr"
)

// TypeSet holds the WIT descriptions of the runtime records for one target.
type TypeSet struct {
	String       *wit.TypeDef
	Slice        *wit.TypeDef
	Allocator    *wit.TypeDef
	DynamicArray *wit.TypeDef
}

// Types builds the record descriptions for t.
func Types(t Target) *TypeSet {
	ptr := t.pointerType()

	allocator := record(NameAllocator,
		wit.Field{Name: FieldData, Type: ptr},
		wit.Field{Name: FieldProc, Type: ptr},
	)

	return &TypeSet{
		String: record(NameString,
			wit.Field{Name: FieldCount, Type: wit.S64{}},
			wit.Field{Name: FieldData, Type: ptr},
		),
		Slice: record(NameSlice,
			wit.Field{Name: FieldCount, Type: wit.S64{}},
			wit.Field{Name: FieldData, Type: ptr},
		),
		Allocator: allocator,
		DynamicArray: record(NameDynamicArray,
			wit.Field{Name: FieldCount, Type: wit.S64{}},
			wit.Field{Name: FieldData, Type: ptr},
			wit.Field{Name: FieldCapacity, Type: wit.S64{}},
			wit.Field{Name: FieldAllocator, Type: allocator},
		),
	}
}

func record(name string, fields ...wit.Field) *wit.TypeDef {
	return &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: fields},
	}
}
