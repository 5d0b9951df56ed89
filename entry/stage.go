package entry

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
)

// HostArgs is an argument vector staged in program memory, in the shape a
// process receives it: a count and an array of NUL-terminated strings.
type HostArgs struct {
	Area    Area
	Argc    int32
	Argv    uint32
	Backing uint32
}

func backingSize(cfg Config) uint64 {
	l := cfg.target().Layouts()
	return uint64(cfg.maxArgs()) * uint64(abi.AlignTo(l.String.Size, l.String.Align))
}

// AreaSize returns the number of bytes Stage needs for args.
func AreaSize(cfg Config, args []string) uint64 {
	ptrSize := uint64(cfg.target().PtrSize)
	size := backingSize(cfg) + uint64(len(args))*ptrSize
	for _, a := range args {
		size += uint64(len(a)) + 1
	}
	// Room to align the area base.
	return size + 8
}

// Stage copies args into a fresh argument area of mem. The area is never
// released; the staged bytes outlive the program.
func Stage(mem yalrt.Memory, cfg Config, args []string) (HostArgs, error) {
	if err := cfg.Validate(); err != nil {
		return HostArgs{}, err
	}
	if len(args) > math.MaxInt32 {
		return HostArgs{}, errors.Overflow(errors.PhaseMarshal, len(args), "argc")
	}
	for i, a := range args {
		if uint64(len(a)) > uint64(cfg.maxArgLen()) {
			return HostArgs{}, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
				Path("argv", strconv.Itoa(i)).
				Value(len(a)).
				Detail("argument of %d bytes exceeds the %d byte limit", len(a), cfg.maxArgLen()).
				Build()
		}
		if strings.IndexByte(a, 0) >= 0 {
			return HostArgs{}, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
				Path("argv", strconv.Itoa(i)).
				Detail("argument contains a NUL byte").
				Build()
		}
	}

	size := AreaSize(cfg, args)
	if size > math.MaxUint32 {
		return HostArgs{}, errors.Overflow(errors.PhaseMarshal, size, "argument area")
	}
	area, err := reserve(mem, cfg, uint32(size))
	if err != nil {
		return HostArgs{}, err
	}

	l := cfg.target().Layouts()
	ptrSize := cfg.target().PtrSize
	backing := abi.AlignTo(area.Base, l.String.Align)
	argv := backing + uint32(backingSize(cfg))
	next := argv + uint32(len(args))*ptrSize

	for i, a := range args {
		if err := mem.Write(next, append([]byte(a), 0)); err != nil {
			return HostArgs{}, err
		}
		if err := l.StorePtr(mem, argv+uint32(i)*ptrSize, next); err != nil {
			return HostArgs{}, err
		}
		next += uint32(len(a)) + 1
	}

	yalrt.Logger().Debug("arguments staged",
		zap.Int("argc", len(args)),
		zap.Uint32("area_base", area.Base),
		zap.Uint32("area_size", area.Size),
		zap.Uint32("argv", argv))

	return HostArgs{
		Area:    area,
		Argc:    int32(len(args)),
		Argv:    argv,
		Backing: backing,
	}, nil
}

func reserve(mem yalrt.Memory, cfg Config, size uint32) (Area, error) {
	if cfg.Area != nil {
		if cfg.Area.Size < size {
			return Area{}, errors.New(errors.PhaseMarshal, errors.KindAllocation).
				Detail("argument area of %d bytes cannot hold %d", cfg.Area.Size, size).
				Build()
		}
		return *cfg.Area, nil
	}

	grower, ok := mem.(yalrt.Grower)
	sizer, ok2 := mem.(yalrt.MemorySizer)
	if !ok || !ok2 {
		return Area{}, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
			Detail("memory cannot grow; configure an argument area").
			Build()
	}

	pages := (uint64(size) + yalrt.PageSize - 1) / yalrt.PageSize
	base := sizer.Size()
	if _, err := grower.Grow(uint32(pages)); err != nil {
		return Area{}, errors.Wrap(errors.PhaseMarshal, errors.KindAllocation, err, "reserve argument area")
	}
	return Area{Base: base, Size: uint32(pages * yalrt.PageSize)}, nil
}
