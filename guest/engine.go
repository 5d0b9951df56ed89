package guest

import (
	"context"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/errors"
)

// Export names a program module is expected to provide.
const (
	DefaultEntryName   = "Main"
	DefaultMemoryName  = "memory"
	AllocatorCallName  = "yal_allocator_call"
	maxMemoryLimitPage = 65536
)

// Config holds configuration for engine creation
type Config struct {
	// Stdout and Stderr receive WASI output when EnableWASI is set.
	Stdout io.Writer
	Stderr io.Writer

	// EntryName is the exported entry procedure. Empty means "Main".
	EntryName string

	// MemoryName is the exported linear memory. Empty means "memory".
	MemoryName string

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// EnableWASI provides wasi_snapshot_preview1 imports, so programs can
	// write output and exit with a status.
	EnableWASI bool
}

func (c *Config) entryName() string {
	if c.EntryName == "" {
		return DefaultEntryName
	}
	return c.EntryName
}

func (c *Config) memoryName() string {
	if c.MemoryName == "" {
		return DefaultMemoryName
	}
	return c.MemoryName
}

// Engine compiles and instantiates program modules on one wazero runtime.
type Engine struct {
	runtime wazero.Runtime
	cfg     Config
}

// NewEngine creates an engine. A nil cfg uses defaults.
func NewEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.MemoryLimitPages > maxMemoryLimitPage {
		return nil, errors.InvalidInput(errors.PhaseConfig, "memory limit exceeds 65536 pages")
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if cfg.EnableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, errors.Load("instantiate WASI", err)
		}
	}

	return &Engine{runtime: rt, cfg: *cfg}, nil
}

// Load compiles a program module and checks its exports.
func (e *Engine) Load(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	mod := &Module{engine: e, compiled: compiled}
	if err := mod.check(); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	yalrt.Logger().Debug("program loaded",
		zap.String("entry", e.cfg.entryName()),
		zap.Bool("allocator_call", mod.hasAllocatorCall),
		zap.Int("imports", len(compiled.ImportedFunctions())))
	return mod, nil
}

// Close releases the runtime and every module instantiated from it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

var (
	entrySignature     = []api.ValueType{api.ValueTypeI64, api.ValueTypeI32}
	allocatorSignature = []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32}
)

func sameTypes(got, want []api.ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func signatureError(name string, def api.FunctionDefinition, want string) error {
	return errors.New(errors.PhaseLoad, errors.KindSignature).
		Path(name).
		Detail("got %s -> %s, want %s",
			valueTypes(def.ParamTypes()), valueTypes(def.ResultTypes()), want).
		Build()
}

func valueTypes(types []api.ValueType) string {
	out := "("
	for i, t := range types {
		if i > 0 {
			out += " "
		}
		out += api.ValueTypeName(t)
	}
	return out + ")"
}
