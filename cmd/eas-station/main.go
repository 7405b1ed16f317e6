/*
NAME
  main.go

DESCRIPTION
  eas-station is the station binary: it loads configuration, builds the
  audio source, the continuous monitor, the broadcaster, the GPIO
  controller, and the audit sink, wires them together, and runs until
  signaled. Subcommands: run (default), selftest, decode <file>.

AUTHORS
  New station entry point.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main is the EAS station binary.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
	"github.com/spf13/pflag"

	"github.com/samestation/eas/station/config"
)

// Logging configuration: a rotated file plus stderr, no cloud sink.
const (
	logPath      = "/var/log/eas-station/eas-station.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	fs := pflag.NewFlagSet("eas-station", pflag.ExitOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	cfg, err := config.Load(flags.ConfigFile())
	if err != nil {
		log.Fatal("could not load configuration", "error", err)
	}
	cfg, err = flags.Apply(cfg, fs)
	if err != nil {
		log.Fatal("could not apply flag overrides", "error", err)
	}

	args := fs.Args()
	cmd := "run"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "run":
		runStation(cfg, flags.ConfigFile(), log)
	case "selftest":
		runSelftest(cfg, log, args[1:])
	case "decode":
		if len(args) < 2 {
			log.Fatal("decode subcommand requires a file path")
		}
		runDecode(args[1], cfg)
	default:
		log.Fatal("unknown subcommand", "command", cmd)
	}
}

// waitForSignal blocks until SIGINT or SIGTERM is received.
func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
