// Package dynarray manipulates DynamicArray records in place.
//
// An Array is a handle over a record at a fixed address. Every operation
// reloads the record, so changes made by compiled code between calls are
// observed. Growth, shrinking and release go through the procedure named by
// the record's own allocator field:
//
//	arr := dynarray.New(mem, abi.Wasm32, table, addr, 4, 4)
//	_ = arr.Init(abi.Allocator{Data: state, Proc: proc})
//	_ = arr.Append(ctx, []byte{1, 0, 0, 0})
//	defer arr.Release(ctx)
//
// Of wraps an Array with an abi.Codec for typed access.
package dynarray
