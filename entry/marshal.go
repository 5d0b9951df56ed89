package entry

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
	"github.com/wippyai/yal-runtime/memory"
)

// Marshal builds the Slice of String handed to Main from a host argument
// vector. Strings are written to the backing store at backing, which must
// hold MaxArgs records; each aliases its argument's bytes without copying.
// Arguments past MaxArgs are dropped.
func Marshal(mem yalrt.Memory, argc int32, argv uint32, backing uint32, cfg Config) (abi.Slice, error) {
	if err := cfg.Validate(); err != nil {
		return abi.Slice{}, err
	}
	if argc < 0 {
		return abi.Slice{}, errors.New(errors.PhaseMarshal, errors.KindPrecondition).
			Value(argc).
			Detail("argc %d is negative", argc).
			Build()
	}

	n := int(argc)
	if limit := cfg.maxArgs(); n > limit {
		yalrt.Logger().Debug("arguments truncated",
			zap.Int("argc", n),
			zap.Int("kept", limit),
			zap.Int("dropped", n-limit))
		n = limit
	}

	l := cfg.target().Layouts()
	ptrSize := cfg.target().PtrSize
	stride := abi.AlignTo(l.String.Size, l.String.Align)
	// The terminator follows at most maxArgLen bytes.
	scanLimit := cfg.maxArgLen()
	if scanLimit < math.MaxUint32 {
		scanLimit++
	}

	for i := 0; i < n; i++ {
		ptr, err := l.LoadPtr(mem, argv+uint32(i)*ptrSize)
		if err != nil {
			return abi.Slice{}, argError(i, err, "read argv entry")
		}
		if ptr == 0 {
			return abi.Slice{}, errors.New(errors.PhaseMarshal, errors.KindPrecondition).
				Path("argv", strconv.Itoa(i)).
				ABIType(abi.NameString).
				Detail("null argument pointer").
				Build()
		}

		length, err := memory.CStringLen(mem, ptr, scanLimit)
		if err != nil {
			return abi.Slice{}, argError(i, err, "scan argument")
		}

		s := abi.String{Count: int64(length), Data: ptr}
		if err := l.StoreString(mem, backing+uint32(i)*stride, s); err != nil {
			return abi.Slice{}, argError(i, err, "store argument")
		}
	}

	return abi.Slice{Count: int64(n), Data: backing}, nil
}

func argError(i int, cause error, detail string) error {
	return errors.New(errors.PhaseMarshal, errors.KindPrecondition).
		Path("argv", strconv.Itoa(i)).
		ABIType(abi.NameString).
		Detail("%s", detail).
		Cause(cause).
		Build()
}

// Strings reads back the marshaled arguments as Go strings.
func Strings(mem yalrt.Memory, args abi.Slice, target abi.Target) ([]string, error) {
	strs, err := abi.Elements(mem, args, abi.StringCodec(target.Layouts()))
	if err != nil {
		return nil, err
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		text, err := s.Text(mem)
		if err != nil {
			return nil, err
		}
		out[i] = text
	}
	return out, nil
}
