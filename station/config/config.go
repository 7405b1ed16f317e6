/*
NAME
  config.go

DESCRIPTION
  config.go defines the station's configuration: a flat struct covering
  the monitor, broadcaster, and GPIO's recognized options, loaded from a
  YAML file and overridable by command-line flags.

AUTHOR
  Grounded on revid/config/config.go's flat-struct-plus-Validate style,
  and doismellburning-samoyed's src/deviceid.go for yaml.v3 usage.
*/

// Package config loads and validates the station's configuration: audio
// source selection, the continuous monitor's tunables, broadcaster and
// GPIO pin identity, and jurisdiction coverage.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samestation/eas/gpio"
)

// GPIOPinConfig mirrors gpio.PinConfig for YAML loading (gpio.PinConfig
// itself carries no yaml tags, to keep that package free of a
// config-format dependency).
type GPIOPinConfig struct {
	Pin             int     `yaml:"pin"`
	Name            string  `yaml:"name"`
	ActiveHigh      bool    `yaml:"active_high"`
	DebounceMS      int     `yaml:"debounce_ms"`
	HoldSeconds     float64 `yaml:"hold_seconds"`
	WatchdogSeconds float64 `yaml:"watchdog_seconds"`
	Enabled         bool    `yaml:"enabled"`
}

func (p GPIOPinConfig) toGPIO() gpio.PinConfig {
	return gpio.PinConfig{
		Pin:             p.Pin,
		Name:            p.Name,
		ActiveHigh:      p.ActiveHigh,
		DebounceMS:      p.DebounceMS,
		HoldSeconds:     p.HoldSeconds,
		WatchdogSeconds: p.WatchdogSeconds,
		Enabled:         p.Enabled,
	}
}

// Config is the station's complete configuration.
type Config struct {
	// Audio source.
	AudioSourceKind string `yaml:"audio_source_kind"` // "file" or "alsa".
	AudioFilePath   string `yaml:"audio_file_path"`
	AudioLoop       bool   `yaml:"audio_loop"`
	ALSADevice      string `yaml:"alsa_device"`

	// Monitor (C5).
	BufferSeconds            float64 `yaml:"buffer_seconds"`
	ScanIntervalSeconds      float64 `yaml:"scan_interval_seconds"`
	SampleRate               int     `yaml:"sample_rate"`
	MaxConcurrentScans       int     `yaml:"max_concurrent_scans"`
	DuplicateCooldownSeconds float64 `yaml:"duplicate_cooldown_seconds"`
	WatchdogTimeoutSeconds   float64 `yaml:"watchdog_timeout_seconds"`
	SaveAudio                bool    `yaml:"save_audio"`
	ArchiveDirectory         string  `yaml:"archive_directory"`
	PrefilterThreshold       float64 `yaml:"prefilter_threshold"`

	// Broadcaster (C7).
	OriginatorCode       string `yaml:"originator_code"`
	StationCallsign      string `yaml:"station_callsign"`
	AttentionToneSeconds int    `yaml:"attention_tone_seconds"`
	PlaybackSampleRate   int    `yaml:"playback_sample_rate"`
	PlayerCommand        string `yaml:"player_command"`
	IcecastMountURL      string `yaml:"icecast_mount_url"`

	// Jurisdiction (C6).
	ConfiguredFIPSCodes []string `yaml:"configured_fips_codes"`

	// GPIO (C8).
	GPIOPins []GPIOPinConfig `yaml:"gpio_pins"`
}

const (
	maxConcurrentScansHardCap = 8
)

// setDefaults fills unset fields with the recognized option defaults.
func (c *Config) setDefaults() {
	if c.BufferSeconds <= 0 {
		c.BufferSeconds = 12
	}
	if c.ScanIntervalSeconds <= 0 {
		c.ScanIntervalSeconds = 3
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.MaxConcurrentScans <= 0 {
		c.MaxConcurrentScans = 2
	}
	if c.DuplicateCooldownSeconds <= 0 {
		c.DuplicateCooldownSeconds = 30
	}
	if c.WatchdogTimeoutSeconds <= 0 {
		c.WatchdogTimeoutSeconds = 60
	}
	if c.AttentionToneSeconds <= 0 {
		c.AttentionToneSeconds = 8
	}
	if c.PlaybackSampleRate <= 0 {
		c.PlaybackSampleRate = 44100
	}
	if c.PrefilterThreshold <= 0 {
		c.PrefilterThreshold = 0.001
	}
}

// Validate checks inter-field invariants and applies defaults, in the
// same spirit as revid/config.Config.Validate.
func (c *Config) Validate() error {
	c.setDefaults()

	if c.AudioSourceKind != "file" && c.AudioSourceKind != "alsa" {
		return fmt.Errorf("config: audio_source_kind must be \"file\" or \"alsa\", got %q", c.AudioSourceKind)
	}
	if c.AudioSourceKind == "file" && c.AudioFilePath == "" {
		return fmt.Errorf("config: audio_file_path required when audio_source_kind is \"file\"")
	}
	if c.MaxConcurrentScans > maxConcurrentScansHardCap {
		return fmt.Errorf("config: max_concurrent_scans must be <= %d, got %d", maxConcurrentScansHardCap, c.MaxConcurrentScans)
	}
	if len(c.OriginatorCode) != 0 && len(c.OriginatorCode) != 3 {
		return fmt.Errorf("config: originator_code must be 3 chars, got %q", c.OriginatorCode)
	}
	if len(c.StationCallsign) > 8 {
		return fmt.Errorf("config: station_callsign must be <= 8 chars, got %q", c.StationCallsign)
	}
	for _, code := range c.ConfiguredFIPSCodes {
		if len(code) != 6 {
			return fmt.Errorf("config: configured_fips_codes entries must be six digits, got %q", code)
		}
	}
	seen := make(map[int]bool)
	for _, p := range c.GPIOPins {
		if seen[p.Pin] {
			return fmt.Errorf("config: duplicate gpio pin %d", p.Pin)
		}
		seen[p.Pin] = true
	}
	return nil
}

// GPIOPinConfigs converts the YAML-loaded pin list to gpio.PinConfig.
func (c *Config) GPIOPinConfigs() []gpio.PinConfig {
	out := make([]gpio.PinConfig, len(c.GPIOPins))
	for i, p := range c.GPIOPins {
		out[i] = p.toGPIO()
	}
	return out
}

// Load reads and parses a YAML config file at path, then validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
