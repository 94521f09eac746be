package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"cartport/emu/log"
	"cartport/hw/clock"
)

type Config struct {
	Clock     ClockConfig     `toml:"clock"`
	REU       REUConfig       `toml:"reu"`
	Cartridge CartridgeConfig `toml:"cartridge"`
}

type ClockConfig struct {
	// Phi2Offset is the calibration offset of the phase references, in
	// cycle counter units.
	Phi2Offset int `toml:"phi2_offset"`
	// Profile is the clock of the simulated host: auto, pal or ntsc.
	Profile string `toml:"profile"`
}

type REUConfig struct {
	Enabled bool `toml:"enabled"`
}

type CartridgeConfig struct {
	// Type is the hardware type id of the cartridge, -1 for none.
	Type  int    `toml:"type"`
	Image string `toml:"image"`
	EXROM bool   `toml:"exrom"`
	GAME  bool   `toml:"game"`
}

const DefaultFileMode = os.FileMode(0755)

var DefaultConfig = Config{
	Clock: ClockConfig{
		Phi2Offset: 0,
		Profile:    "pal",
	},
	Cartridge: CartridgeConfig{
		Type: -1,
	},
}

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "cartport")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the cartport config
// directory, or provides the default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(filepath.Join(ConfigDir(), cfgFilename))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.Warnf("using default configuration: %v", err)
		}
		return DefaultConfig
	}
	return cfg
}

// LoadConfig loads the configuration file at path. Missing fields take their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) check() error {
	if off := clock.ClampOffset(cfg.Clock.Phi2Offset); off != cfg.Clock.Phi2Offset {
		log.ModEmu.Warnf("phi2 offset %d out of range, clamped to %d", cfg.Clock.Phi2Offset, off)
		cfg.Clock.Phi2Offset = off
	}
	if _, err := ParseProfile(cfg.Clock.Profile); err != nil {
		return err
	}
	return nil
}

// ParseProfile parses the clock profile setting, auto selects PAL.
func ParseProfile(s string) (clock.Profile, error) {
	if s == "" || s == "auto" {
		return clock.PAL, nil
	}
	return clock.ParseProfile(s)
}

// SaveConfig writes cfg at path, creating the directory if needed.
func SaveConfig(path string, cfg Config) error {
	cfg.Clock.Phi2Offset = clock.ClampOffset(cfg.Clock.Phi2Offset)

	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultFileMode); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// DefaultConfigPath is the path of the configuration file in the cartport
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}
