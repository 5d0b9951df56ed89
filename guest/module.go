package guest

import (
	"context"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/yal-runtime/errors"
	"github.com/wippyai/yal-runtime/memory"
)

// Module is a compiled program.
type Module struct {
	engine           *Engine
	compiled         wazero.CompiledModule
	hasAllocatorCall bool
}

func (m *Module) check() error {
	cfg := &m.engine.cfg
	funcs := m.compiled.ExportedFunctions()

	entry, ok := funcs[cfg.entryName()]
	if !ok {
		return errors.NotFound(errors.PhaseLoad, "export", cfg.entryName())
	}
	if !sameTypes(entry.ParamTypes(), entrySignature) || len(entry.ResultTypes()) != 0 {
		return signatureError(cfg.entryName(), entry, "(i64 i32) -> ()")
	}

	if _, ok := m.compiled.ExportedMemories()[cfg.memoryName()]; !ok {
		return errors.NotFound(errors.PhaseLoad, "memory export", cfg.memoryName())
	}

	if call, ok := funcs[AllocatorCallName]; ok {
		if !sameTypes(call.ParamTypes(), allocatorSignature) ||
			!sameTypes(call.ResultTypes(), []api.ValueType{api.ValueTypeI32}) {
			return signatureError(AllocatorCallName, call, "(i32 i64 i32 i32) -> (i32)")
		}
		m.hasAllocatorCall = true
	}
	return nil
}

// HasAllocatorCall reports whether the module exports the allocator trampoline.
func (m *Module) HasAllocatorCall() bool {
	return m.hasAllocatorCall
}

// Instantiate creates a fresh instance with its own memory. Start functions
// are not run; the entry point is Main.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	return m.InstantiateWithOutput(ctx, m.engine.cfg.Stdout, m.engine.cfg.Stderr)
}

// InstantiateWithOutput is Instantiate with WASI output sent to stdout and
// stderr instead of the engine's writers. Nil writers discard output.
func (m *Module) InstantiateWithOutput(ctx context.Context, stdout, stderr io.Writer) (*Instance, error) {
	cfg := &m.engine.cfg
	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions()
	if stdout != nil {
		modCfg = modCfg.WithStdout(stdout)
	}
	if stderr != nil {
		modCfg = modCfg.WithStderr(stderr)
	}

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modCfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "instantiate module")
	}

	inst := &Instance{
		module: mod,
		mem:    memory.Wrap(mod.ExportedMemory(cfg.memoryName())),
		main:   mod.ExportedFunction(cfg.entryName()),
	}
	if m.hasAllocatorCall {
		inst.allocCall = mod.ExportedFunction(AllocatorCallName)
	}
	return inst, nil
}

// Close releases the compiled code.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
