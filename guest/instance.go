package guest

import (
	"context"
	stderrors "errors"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/errors"
	"github.com/wippyai/yal-runtime/memory"
)

// Instance is an instantiated program. It implements entry.Program.
type Instance struct {
	module    api.Module
	mem       *memory.Wrapper
	main      api.Function
	allocCall api.Function
}

// Memory returns the instance's linear memory.
func (i *Instance) Memory() yalrt.Memory {
	return i.mem
}

// Wrapper returns the linear memory with its Size and Grow methods.
func (i *Instance) Wrapper() *memory.Wrapper {
	return i.mem
}

// Main calls the exported entry procedure with the Slice fields as
// parameters. A WASI exit is returned as a *sys.ExitError, which carries
// the status. When ctx ends first, the context error is returned.
func (i *Instance) Main(ctx context.Context, args abi.Slice) error {
	_, err := i.main.Call(ctx, uint64(args.Count), uint64(args.Data))
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrap(errors.PhaseInvoke, errors.KindTrap, ctxErr, "main interrupted")
	}

	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		yalrt.Logger().Debug("program exited", zap.Uint32("code", exitErr.ExitCode()))
		return exitErr
	}
	return err
}

// Allocators returns the table that resolves proc_ptr values through the
// module's allocator trampoline.
func (i *Instance) Allocators() abi.ProcTable {
	return &guestTable{call: i.allocCall}
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

type guestTable struct {
	call api.Function
}

func (t *guestTable) Resolve(proc uint32) (abi.Proc, error) {
	if t.call == nil {
		return nil, errors.NotFound(errors.PhaseAlloc, "export", AllocatorCallName)
	}
	if proc == 0 {
		return nil, errors.Precondition(errors.PhaseAlloc, abi.NameAllocator, "proc_ptr is null")
	}
	call := t.call
	return func(ctx context.Context, size int64, block, data uint32) (uint32, error) {
		results, err := call.Call(ctx, uint64(proc), uint64(size), uint64(block), uint64(data))
		if err != nil {
			return 0, err
		}
		return uint32(results[0]), nil
	}, nil
}
