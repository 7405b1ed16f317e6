/*
NAME
  flags.go

DESCRIPTION
  flags.go defines the command-line flags that can override a loaded
  YAML config, one pflag per recognized option that makes sense to
  override at the command line (jurisdiction and GPIO pin lists are
  config-file only).

AUTHOR
  Grounded on doismellburning-samoyed's cmd/direwolf/main.go (pflag.XxxP
  flag declarations with shorthand and default values).
*/

package config

import "github.com/spf13/pflag"

// Flags holds the command-line overrides registered by RegisterFlags.
type Flags struct {
	configFile         *string
	audioFilePath      *string
	archiveDirectory   *string
	sampleRate         *int
	maxConcurrentScans *int
	saveAudio          *bool
	originatorCode     *string
	stationCallsign    *string
	icecastMountURL    *string
}

// RegisterFlags declares the station's command-line flags on fs and
// returns a handle used to apply them over a loaded Config. Call
// fs.Parse after RegisterFlags and before Apply.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	return &Flags{
		configFile:         fs.StringP("config-file", "c", "station.yaml", "Path to the station's YAML configuration file."),
		audioFilePath:      fs.StringP("audio-file", "f", "", "Override audio_file_path (file audio source)."),
		archiveDirectory:   fs.StringP("archive-dir", "a", "", "Override archive_directory."),
		sampleRate:         fs.IntP("sample-rate", "r", 0, "Override sample_rate."),
		maxConcurrentScans: fs.IntP("max-concurrent-scans", "m", 0, "Override max_concurrent_scans."),
		saveAudio:          fs.Bool("save-audio", false, "Force save_audio on, regardless of config-file value."),
		originatorCode:     fs.StringP("originator-code", "o", "", "Override originator_code."),
		stationCallsign:    fs.StringP("station-callsign", "s", "", "Override station_callsign."),
		icecastMountURL:    fs.String("icecast-mount-url", "", "Override icecast_mount_url."),
	}
}

// ConfigFile returns the --config-file flag's value.
func (f *Flags) ConfigFile() string { return *f.configFile }

// Apply overlays any flags the caller actually set onto cfg and
// re-validates it.
func (f *Flags) Apply(cfg Config, fs *pflag.FlagSet) (Config, error) {
	if fs.Changed("audio-file") {
		cfg.AudioFilePath = *f.audioFilePath
	}
	if fs.Changed("archive-dir") {
		cfg.ArchiveDirectory = *f.archiveDirectory
	}
	if fs.Changed("sample-rate") {
		cfg.SampleRate = *f.sampleRate
	}
	if fs.Changed("max-concurrent-scans") {
		cfg.MaxConcurrentScans = *f.maxConcurrentScans
	}
	if fs.Changed("save-audio") {
		cfg.SaveAudio = *f.saveAudio
	}
	if fs.Changed("originator-code") {
		cfg.OriginatorCode = *f.originatorCode
	}
	if fs.Changed("station-callsign") {
		cfg.StationCallsign = *f.stationCallsign
	}
	if fs.Changed("icecast-mount-url") {
		cfg.IcecastMountURL = *f.icecastMountURL
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
