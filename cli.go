package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"

	"cartport/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run scripts against the emulation
	classifyMode             // Classify clock samples
	cartsMode                // List cartridge variants
	configMode               // Show effective configuration
	versionMode              // Show cartport version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run Lua scripts driving the simulated host."`
		Classify Classify `cmd:"" help:"Classify the host clock from phase-2 period samples."`
		Carts    Carts    `cmd:"" help:"List supported cartridge types."`
		ShowCfg  ShowCfg  `cmd:"" name:"config" help:"Show the effective configuration."`
		Version  Version  `cmd:"" help:"Show cartport version."`

		Log     logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		CfgFile string     `name:"config" help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		Scripts []string `arg:"" name:"script.lua" help:"Scripts to run, each on its own machine." type:"existingfile"`

		Trace   *outfile      `name:"trace" help:"Write a JSON bus cycle trace." placeholder:"FILE|stdout|stderr"`
		REU     string        `name:"reu" help:"RAM expansion: on, off, or as configured." enum:"on,off,config" default:"config"`
		Cart    string        `name:"cart" help:"Cartridge hardware type, overriding the configuration." placeholder:"ID|none"`
		Image   string        `name:"image" help:"Cartridge image file." type:"existingfile"`
		Profile string        `name:"profile" help:"Host clock profile: auto, pal or ntsc."`
		Timeout time.Duration `name:"timeout" help:"Maximum wait for a valid host clock." default:"5s"`
	}

	Classify struct {
		Counts  []uint32 `arg:"" name:"count" help:"Phase-2 period samples, in cycle counter units. They are fed in a loop."`
		Samples int      `name:"samples" help:"Number of samples to feed." default:"1000"`
	}

	Carts   struct{}
	ShowCfg struct {
		Save bool `name:"save" help:"Write the effective configuration back to the configuration file."`
	}
	Version struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file. (default: config.toml in the user config directory)",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("cartport"),
		kong.Description("C64 cartridge port emulation."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch ctx.Command() {
	case "classify <count>":
		cfg.mode = classifyMode
	case "carts":
		cfg.mode = cartsMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	var mask logModMask
	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			mask |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		mask = logModMask(log.ModuleMaskAll)
	}

	*lm = mask
	log.EnableDebugModules(log.ModuleMask(mask))
	return nil
}

type outfile struct {
	mu    sync.Mutex
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string { return f.name }
func (f *outfile) Close() error   { return f.close() }

// Write is safe for concurrent use, machines running in parallel share the
// trace file.
func (f *outfile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.w.Write(p)
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
