package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/yal-runtime/abi"
	"github.com/wippyai/yal-runtime/entry"
	"github.com/wippyai/yal-runtime/guest"
)

// fileConfig is the TOML configuration file.
type fileConfig struct {
	Area      *areaConfig `toml:"area"`
	Timeout   string      `toml:"timeout"`
	MaxArgs   int         `toml:"max_args"`
	MaxArgLen uint32      `toml:"max_arg_len"`
	Pages     uint32      `toml:"memory_limit_pages"`
	WASI      bool        `toml:"wasi"`
	Verbose   bool        `toml:"verbose"`
}

type areaConfig struct {
	Base uint32 `toml:"base"`
	Size uint32 `toml:"size"`
}

// settings is the resolved configuration of one run.
type settings struct {
	entry   entry.Config
	guest   guest.Config
	timeout time.Duration
	verbose bool
}

func defaultConfig() *fileConfig {
	return &fileConfig{
		MaxArgs: entry.DefaultMaxArgs,
		WASI:    true,
	}
}

// loadConfig reads path over the defaults. Unknown keys are rejected.
func loadConfig(path string) (*fileConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// flagValues holds command-line overrides.
type flagValues struct {
	configPath  string
	timeout     time.Duration
	maxArgs     int
	pages       uint
	verbose     bool
	interactive bool
	dump        bool
}

func (f *flagValues) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "TOML configuration file")
	fs.IntVar(&f.maxArgs, "max-args", 0, "Number of argument slots (default 128)")
	fs.DurationVar(&f.timeout, "timeout", 0, "Stop Main after this duration (0 = no limit)")
	fs.UintVar(&f.pages, "pages", 0, "Memory limit in 64KiB pages (0 = runtime default)")
	fs.BoolVar(&f.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&f.interactive, "i", false, "Interactive mode with TUI")
	fs.BoolVar(&f.dump, "dump", false, "Print the marshaled arguments without calling Main")
}

// apply overrides cfg with the flags that were set on fs.
func (f *flagValues) apply(fs *flag.FlagSet, cfg *fileConfig) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "max-args":
			cfg.MaxArgs = f.maxArgs
		case "timeout":
			cfg.Timeout = f.timeout.String()
		case "pages":
			cfg.Pages = uint32(f.pages)
		case "v":
			cfg.Verbose = f.verbose
		}
	})
}

func (c *fileConfig) settings() (settings, error) {
	s := settings{
		entry: entry.Config{
			Target:    abi.Wasm32,
			MaxArgs:   c.MaxArgs,
			MaxArgLen: c.MaxArgLen,
		},
		guest: guest.Config{
			MemoryLimitPages: c.Pages,
			EnableWASI:       c.WASI,
		},
		verbose: c.Verbose,
	}
	if c.Area != nil {
		s.entry.Area = &entry.Area{Base: c.Area.Base, Size: c.Area.Size}
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return settings{}, fmt.Errorf("timeout: %w", err)
		}
		if d < 0 {
			return settings{}, fmt.Errorf("timeout must not be negative")
		}
		s.timeout = d
	}
	if err := s.entry.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}
