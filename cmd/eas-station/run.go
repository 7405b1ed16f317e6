/*
NAME
  run.go

DESCRIPTION
  run.go wires the station's collaborators together for the "run"
  subcommand: audio source, continuous monitor, broadcaster, GPIO
  controller, and audit sink, then blocks until a termination signal is
  received.

AUTHOR
  Grounded on cmd/speaker/main.go's run function (construct collaborators,
  loop, shut down on signal) and ausocean-av/cmd/rv/main.go's lumberjack
  construction pattern for the audit sink.
*/

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/coreos/go-systemd/daemon"

	"github.com/ausocean/utils/logging"

	"github.com/samestation/eas/audiosrc"
	"github.com/samestation/eas/audit"
	"github.com/samestation/eas/broadcast"
	"github.com/samestation/eas/gpio"
	"github.com/samestation/eas/monitor"
	"github.com/samestation/eas/same"
	"github.com/samestation/eas/station/config"
)

const defaultAuditFilename = "audit.jsonl"

// runStation builds every collaborator from cfg and runs until signaled.
// configPath is watched for changes so an operator is notified when a
// restart is needed to pick up an edit.
func runStation(cfg config.Config, configPath string, l logging.Logger) {
	watchConfigFile(configPath, l)

	src, err := openAudioSource(cfg, l)
	if err != nil {
		l.Fatal("could not open audio source", "error", err)
	}

	auditDir := cfg.ArchiveDirectory
	if auditDir == "" {
		auditDir = "."
	}
	sink := audit.NewJSONLSink(filepath.Join(auditDir, defaultAuditFilename))
	defer sink.Close()

	gc := gpio.New(sink, l)
	if err := gc.Configure(cfg.GPIOPinConfigs()); err != nil {
		l.Fatal("could not configure gpio pins", "error", err)
	}

	bcastCfg := broadcast.Config{
		OriginatorCode:       cfg.OriginatorCode,
		StationCallsign:      cfg.StationCallsign,
		SampleRate:           cfg.PlaybackSampleRate,
		AttentionToneSeconds: float64(cfg.AttentionToneSeconds),
	}

	monCfg := monitor.Config{
		BufferSeconds:       int(cfg.BufferSeconds),
		ScanIntervalSeconds: cfg.ScanIntervalSeconds,
		SampleRate:          cfg.SampleRate,
		SaveAudio:           cfg.SaveAudio,
		ArchiveDir:          cfg.ArchiveDirectory,
		MaxConcurrentScans:  cfg.MaxConcurrentScans,
		PrefilterThreshold:  cfg.PrefilterThreshold,
		ConfiguredFIPSCodes: cfg.ConfiguredFIPSCodes,
		DedupCooldown:       time.Duration(cfg.DuplicateCooldownSeconds * float64(time.Second)),
	}

	onAlert := func(rec monitor.AlertRecord) {
		handleAlert(rec, bcastCfg, cfg, gc, sink, l)
	}

	m := monitor.New(monCfg, src, onAlert, l)
	m.Start()
	defer m.Stop()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		l.Warning("eas-station: systemd readiness notification failed", "error", err)
	} else if ok {
		l.Info("eas-station: notified systemd of readiness")
	}

	l.Info("eas-station running", "audio_source_kind", cfg.AudioSourceKind)
	waitForSignal()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		l.Warning("eas-station: systemd stopping notification failed", "error", err)
	} else if ok {
		l.Info("eas-station: notified systemd of shutdown")
	}
	l.Info("eas-station shutting down")
}

// openAudioSource builds the audio source named by cfg.AudioSourceKind.
func openAudioSource(cfg config.Config, l logging.Logger) (audiosrc.Source, error) {
	switch cfg.AudioSourceKind {
	case "file":
		return audiosrc.OpenWAVFile(cfg.AudioFilePath, cfg.AudioLoop)
	case "alsa":
		return audiosrc.OpenALSA(l, audiosrc.ALSAConfig{Title: cfg.ALSADevice, SampleRate: uint(cfg.SampleRate)})
	default:
		return nil, fmt.Errorf("eas-station: unrecognized audio_source_kind %q", cfg.AudioSourceKind)
	}
}

// handleAlert reconstructs the decoded header, renders and plays the
// broadcast, archives it, activates any configured GPIO pins, and
// records the alert.
func handleAlert(rec monitor.AlertRecord, bcastCfg broadcast.Config, cfg config.Config, gc *gpio.Controller, sink audit.Sink, l logging.Logger) {
	h, err := same.Parse(rec.RawText)
	if err != nil {
		l.Error("eas-station: could not re-parse a forwarded alert's header", "error", err, "text", rec.RawText)
		return
	}

	result, err := broadcast.Build(h, nil, bcastCfg)
	if err != nil {
		l.Error("eas-station: could not render broadcast", "error", err)
		return
	}

	archivePath := ""
	if cfg.ArchiveDirectory != "" {
		archivePath, err = broadcast.Archive(cfg.ArchiveDirectory, result, rec.Originator, rec.Event, rec.DecodedAt)
		if err != nil {
			l.Error("eas-station: could not archive broadcast", "error", err)
		}
	}

	player := cfg.PlayerCommand
	if player == "" {
		player = broadcast.DefaultPlayer
	}
	if archivePath != "" {
		if err := broadcast.Play(player, archivePath, l); err != nil {
			l.Error("eas-station: could not play broadcast", "error", err)
		}
	}

	for _, pin := range cfg.GPIOPins {
		if !pin.Enabled {
			continue
		}
		if err := gc.Activate(pin.Pin, gpio.KindAutomatic, "", rec.RawText, rec.Event); err != nil {
			l.Error("eas-station: could not activate gpio pin", "pin", pin.Pin, "error", err)
		}
	}

	if _, err := sink.RecordAlert(audit.AlertRecord{
		RawText:       rec.RawText,
		Originator:    rec.Originator,
		Event:         rec.Event,
		AlertFIPS:     rec.AlertFIPS,
		MatchedFIPS:   rec.MatchedFIPS,
		Confidence:    rec.Confidence,
		DecodedAt:     rec.DecodedAt,
		Archived:      archivePath != "",
		ArchivePath:   archivePath,
		BroadcastPath: archivePath,
	}); err != nil {
		l.Error("eas-station: could not record alert", "error", err)
	}
}
