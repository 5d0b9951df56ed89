package entry

import (
	"context"
	stderrors "errors"
	"sync/atomic"

	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
)

// Program is a compiled program as seen by the entry point.
type Program interface {
	// Memory is the address space Main reads its arguments from.
	Memory() yalrt.Memory

	// Main runs the program's entry procedure. It may never return; a
	// program stopped through ctx reports the context error.
	Main(ctx context.Context, args abi.Slice) error
}

// ExitCoder is implemented by errors that carry a process exit status.
type ExitCoder interface {
	ExitCode() uint32
}

// HostProgram is a Program whose Main is a Go function over Mem.
type HostProgram struct {
	Mem  yalrt.Memory
	Func func(ctx context.Context, mem yalrt.Memory, args abi.Slice) error
}

func (p *HostProgram) Memory() yalrt.Memory {
	return p.Mem
}

func (p *HostProgram) Main(ctx context.Context, args abi.Slice) error {
	if p.Func == nil {
		return nil
	}
	return p.Func(ctx, p.Mem, args)
}

// Runner is the entry point of one process. Run may be called only once.
type Runner struct {
	cfg  Config
	used atomic.Bool
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Prepare stages args in the program's memory and marshals them.
func (r *Runner) Prepare(prog Program, args []string) (abi.Slice, HostArgs, error) {
	mem := prog.Memory()
	if mem == nil {
		return abi.Slice{}, HostArgs{}, errors.InvalidInput(errors.PhaseMarshal, "program has no memory")
	}
	host, err := Stage(mem, r.cfg, args)
	if err != nil {
		return abi.Slice{}, HostArgs{}, err
	}
	slice, err := Marshal(mem, host.Argc, host.Argv, host.Backing, r.cfg)
	if err != nil {
		return abi.Slice{}, HostArgs{}, err
	}
	return slice, host, nil
}

// Run marshals args and calls Main once on the calling goroutine. It returns
// 0 when Main returns, or the status carried by an ExitCoder error.
func (r *Runner) Run(ctx context.Context, prog Program, args []string) (int, error) {
	if !r.used.CompareAndSwap(false, true) {
		return 1, errors.New(errors.PhaseInvoke, errors.KindPrecondition).
			Detail("entry point already ran").
			Build()
	}

	slice, _, err := r.Prepare(prog, args)
	if err != nil {
		return 1, err
	}

	log := yalrt.Logger()
	log.Debug("calling Main", zap.Int64("argc", slice.Count), zap.Uint32("args", slice.Data))

	if err := prog.Main(ctx, slice); err != nil {
		var coder ExitCoder
		if stderrors.As(err, &coder) {
			log.Debug("Main exited", zap.Uint32("code", coder.ExitCode()))
			return int(coder.ExitCode()), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 1, errors.Wrap(errors.PhaseInvoke, errors.KindTrap, err, "Main stopped: "+ctxErr.Error())
		}
		return 1, errors.Wrap(errors.PhaseInvoke, errors.KindTrap, err, "Main failed")
	}

	log.Debug("Main returned")
	return 0, nil
}
