package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

const testYAML = `
audio_source_kind: file
audio_file_path: /tmp/test.wav
sample_rate: 22050
max_concurrent_scans: 3
archive_directory: /tmp/archive
originator_code: EAS
station_callsign: KLOL/FM
configured_fips_codes:
  - "039137"
gpio_pins:
  - pin: 17
    name: siren
    active_high: true
    enabled: true
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "station.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndParsesFields(t *testing.T) {
	path := writeTestConfig(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BufferSeconds != 12 {
		t.Errorf("BufferSeconds = %v, want default 12", cfg.BufferSeconds)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("SampleRate = %v, want 22050 from file", cfg.SampleRate)
	}
	if len(cfg.GPIOPins) != 1 || cfg.GPIOPins[0].Pin != 17 {
		t.Errorf("GPIOPins = %+v, want one pin 17", cfg.GPIOPins)
	}
	pins := cfg.GPIOPinConfigs()
	if len(pins) != 1 || pins[0].Name != "siren" {
		t.Errorf("GPIOPinConfigs = %+v", pins)
	}
}

func TestValidateRejectsBadAudioSourceKind(t *testing.T) {
	cfg := Config{AudioSourceKind: "microphone"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unrecognized audio_source_kind")
	}
}

func TestValidateRejectsOversizedMaxConcurrentScans(t *testing.T) {
	cfg := Config{AudioSourceKind: "file", AudioFilePath: "x.wav", MaxConcurrentScans: 20}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for max_concurrent_scans above the hard cap")
	}
}

func TestValidateRejectsDuplicateGPIOPins(t *testing.T) {
	cfg := Config{
		AudioSourceKind: "file",
		AudioFilePath:   "x.wav",
		GPIOPins:        []GPIOPinConfig{{Pin: 17}, {Pin: 17}},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a duplicate gpio pin number")
	}
}

func TestFlagsApplyOverridesOnlyExplicitlySetFlags(t *testing.T) {
	path := writeTestConfig(t)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"--sample-rate=8000"}); err != nil {
		t.Fatalf("fs.Parse: %v", err)
	}

	overridden, err := flags.Apply(cfg, fs)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if overridden.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000 (overridden)", overridden.SampleRate)
	}
	if overridden.OriginatorCode != "EAS" {
		t.Errorf("OriginatorCode = %q, want EAS (unchanged, not overridden)", overridden.OriginatorCode)
	}
}
