package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/BurntSushi/toml"
	"golang.org/x/term"

	"cartport/emu"
	"cartport/emu/log"
	"cartport/hw/carts"
	"cartport/hw/clock"
)

func main() {
	cli := parseArgs(os.Args[1:])
	log.SetOutput(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

	switch cli.mode {
	case runMode:
		cfg := loadConfig(cli.CfgFile)
		checkf(cli.Run.apply(&cfg), "invalid run options")
		if cli.Run.Trace != nil {
			defer cli.Run.Trace.Close()
		}
		checkf(runScripts(cfg, &cli.Run), "run failed")

	case classifyMode:
		s := &sampleLoop{counts: cli.Classify.Counts}
		p, err := clock.MeasureAndClassify(s, cli.Classify.Samples)
		if errors.Is(err, clock.ErrNoClock) {
			fatalf("no valid clock after %d samples", cli.Classify.Samples)
		}
		checkf(err, "classification failed")
		fmt.Printf("%s (%d Hz, nominal period %d)\n", p, p.Hz(), p.Nominal())

	case cartsMode:
		for _, id := range carts.IDs() {
			fmt.Printf("%3d  %s\n", id, carts.All[id].Name)
		}

	case configMode:
		cfg := loadConfig(cli.CfgFile)
		path := ""
		if cli.ShowCfg.Save {
			path = cli.CfgFile
			if path == "" {
				path = emu.DefaultConfigPath()
			}
		}
		checkf(showConfig(os.Stdout, cfg, path), "configuration")

	case versionMode:
		version := "(devel)"
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
			version = bi.Main.Version
		}
		fmt.Println("cartport", version)
	}
}

// showConfig prints cfg as TOML. If path is not empty cfg is also written
// there, with its values clamped.
func showConfig(w io.Writer, cfg emu.Config, path string) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	if err := emu.SaveConfig(path, cfg); err != nil {
		return err
	}
	log.ModEmu.InfoZ("configuration saved").String("path", path).End()
	return nil
}

func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration")
	return cfg
}

// sampleLoop feeds the given period counts in a loop, a zero count is a
// missing capture.
type sampleLoop struct {
	counts []uint32
	i      int
}

func (s *sampleLoop) Sample() (uint32, bool) {
	c := s.counts[s.i%len(s.counts)]
	s.i++
	return c, c != 0
}
