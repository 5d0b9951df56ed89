package dynarray

import (
	"context"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
)

// Of is an Array whose elements are encoded by a codec.
type Of[T any] struct {
	*Array
	codec abi.Codec[T]
}

// NewOf returns a typed handle over the record at addr.
func NewOf[T any](mem yalrt.Memory, target abi.Target, table abi.ProcTable, addr uint32, codec abi.Codec[T]) *Of[T] {
	return &Of[T]{
		Array: New(mem, target, table, addr, codec.Size(), codec.Align()),
		codec: codec,
	}
}

func (o *Of[T]) Append(ctx context.Context, v T) error {
	return o.push(ctx, func(slot uint32) error {
		return o.codec.Store(o.mem, slot, v)
	})
}

func (o *Of[T]) At(i int64) (T, error) {
	slot, err := o.slot(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return o.codec.Load(o.mem, slot)
}

// Items loads every live element.
func (o *Of[T]) Items() ([]T, error) {
	s, err := o.Array.Slice()
	if err != nil {
		return nil, err
	}
	return abi.Elements(o.mem, s, o.codec)
}
