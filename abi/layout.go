package abi

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/yal-runtime/errors"
)

// Info is the size, alignment and field placement of a type.
type Info struct {
	FieldOffs map[string]uint32
	Size      uint32
	Align     uint32
}

// Offset returns the offset of field, panicking on an unknown name.
func (i Info) Offset(field string) uint32 {
	off, ok := i.FieldOffs[field]
	if !ok {
		panic("abi: unknown field " + field)
	}
	return off
}

// Calculator computes C-style layouts for primitive and record types.
type Calculator struct {
	cache map[*wit.TypeDef]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]Info),
	}
}

func (c *Calculator) Calculate(t wit.Type) (Info, error) {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}, nil
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}, nil
	case wit.U32, wit.S32, wit.F32:
		return Info{Size: 4, Align: 4}, nil
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}, nil
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{}, errors.New(errors.PhaseLayout, errors.KindUnsupported).
			Detail("no runtime layout for %T", t).
			Build()
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) (Info, error) {
	if cached, ok := c.cache[t]; ok {
		return cached, nil
	}

	var (
		info Info
		err  error
	)
	switch kind := t.Kind.(type) {
	case *wit.Record:
		info, err = c.calculateRecord(t, kind)
	case wit.Type:
		info, err = c.Calculate(kind)
	default:
		err = errors.New(errors.PhaseLayout, errors.KindUnsupported).
			ABIType(typeName(t)).
			Detail("no runtime layout for %T", t.Kind).
			Build()
	}
	if err != nil {
		return Info{}, err
	}

	c.cache[t] = info
	return info, nil
}

func (c *Calculator) calculateRecord(t *wit.TypeDef, r *wit.Record) (Info, error) {
	if len(r.Fields) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	fieldOffs := make(map[string]uint32, len(r.Fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range r.Fields {
		fieldLayout, err := c.Calculate(field.Type)
		if err != nil {
			if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
				e.Path = []string{typeName(t), field.Name}
			}
			return Info{}, err
		}

		offset = AlignTo(offset, fieldLayout.Align)
		fieldOffs[field.Name] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		var ok bool
		if offset, ok = SafeAddU32(offset, fieldLayout.Size); !ok {
			return Info{}, errors.Overflow(errors.PhaseLayout, field.Name, "u32 record size")
		}
	}

	return Info{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}, nil
}

func typeName(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return "<anonymous>"
}

// Layouts holds the computed layout of every runtime record for a target.
type Layouts struct {
	Target       Target
	String       Info
	Slice        Info
	Allocator    Info
	DynamicArray Info
}

func computeLayouts(t Target) (*Layouts, error) {
	types := Types(t)
	c := NewCalculator()

	l := &Layouts{Target: t}
	for _, entry := range []struct {
		dst *Info
		def *wit.TypeDef
	}{
		{&l.String, types.String},
		{&l.Slice, types.Slice},
		{&l.Allocator, types.Allocator},
		{&l.DynamicArray, types.DynamicArray},
	} {
		info, err := c.Calculate(entry.def)
		if err != nil {
			return nil, err
		}
		*entry.dst = info
	}
	return l, nil
}
