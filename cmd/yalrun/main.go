package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	yalrt "github.com/wippyai/yal-runtime"
	"github.com/wippyai/yal-runtime/entry"
	"github.com/wippyai/yal-runtime/guest"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("yalrun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags flagValues
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: yalrun [flags] program.wasm [args...]")
		fmt.Fprintln(stderr, "       yalrun -i program.wasm  (interactive mode)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	flags.apply(fs, cfg)
	s, err := cfg.settings()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if s.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			yalrt.SetLogger(logger)
			defer logger.Sync()
		}
	}

	// argv[0] of the program is its own path.
	args := fs.Args()

	if flags.interactive {
		code, err := runInteractive(s, args)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return code
	}

	code, err := run(context.Background(), s, args, stdout, stderr, flags.dump)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}

// run loads args[0] and calls its entry point with args.
func run(ctx context.Context, s settings, args []string, stdout, stderr io.Writer, dump bool) (int, error) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return 1, fmt.Errorf("read file: %w", err)
	}

	gcfg := s.guest
	gcfg.Stdout = stdout
	gcfg.Stderr = stderr
	eng, err := guest.NewEngine(ctx, &gcfg)
	if err != nil {
		return 1, err
	}
	defer eng.Close(ctx)

	mod, err := eng.Load(ctx, data)
	if err != nil {
		return 1, err
	}
	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return 1, err
	}
	defer inst.Close(ctx)

	return execute(ctx, s, inst, args, stdout, dump)
}

// execute marshals args into inst and calls Main, or prints the marshaled
// Slice when dump is set.
func execute(ctx context.Context, s settings, inst *guest.Instance, args []string, stdout io.Writer, dump bool) (int, error) {
	runner := entry.NewRunner(s.entry)
	if dump {
		slice, _, err := runner.Prepare(inst, args)
		if err != nil {
			return 1, err
		}
		return 0, dumpArgs(stdout, inst.Memory(), slice, s.entry.Target, isTerminal(stdout))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return runner.Run(ctx, inst, args)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
