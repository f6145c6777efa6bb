// Command tkeyfido-sim runs the simulated device firmware: it derives a
// compound device identity, wires up the DRBG and touch/timer hardware,
// and answers framed U2F commands over a chosen transport until the host
// disconnects or the process receives a signal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tkeyfido/internal/config"
	"tkeyfido/internal/drbg"
	"tkeyfido/internal/hardware"
	"tkeyfido/internal/logging"
	"tkeyfido/internal/presence"
	"tkeyfido/internal/transport"
	"tkeyfido/internal/u2fcore"
)

func main() {
	configPath := flag.String("config", "tkeyfido.toml", "path to the simulator's TOML config file")
	deviceRoot := flag.String("device-root", "tkeyfido-sim-root", "simulated device root secret (software CDI derivation only)")
	appMeasurement := flag.String("app-measurement", "tkeyfido-u2f-app", "simulated application measurement (software CDI derivation only)")
	flag.Parse()

	if err := run(*configPath, *deviceRoot, *appMeasurement); err != nil {
		fmt.Fprintln(os.Stderr, "tkeyfido-sim:", err)
		os.Exit(1)
	}
}

func run(configPath, deviceRoot, appMeasurement string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format := logging.FormatText
	if cfg.LogFormat == "json" {
		format = logging.FormatJSON
	}
	log := logging.New(logging.Config{Level: level, Format: format, Component: "tkeyfido-sim"})

	cdiProvider, err := hardware.NewMeasuredCDIProvider([]byte(deviceRoot), []byte(appMeasurement))
	if err != nil {
		return fmt.Errorf("derive device identity: %w", err)
	}
	secret, err := cdiProvider.CDI()
	if err != nil {
		return fmt.Errorf("read device identity: %w", err)
	}

	rng, err := drbg.New(secret, hardware.NewSoftwareTRNG())
	if err != nil {
		return fmt.Errorf("init drbg: %w", err)
	}

	timer := hardware.NewSimulatedTouchTimer()
	gate := presence.NewWithTimings(timer, cfg.TouchTimeout(), cfg.BlinkInterval())
	core := u2fcore.New(secret, rng, gate)
	dispatcher := u2fcore.NewDispatcher(core, timer, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting", "transport", cfg.Transport)
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, cfg, dispatcher, log) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return nil
	}
}

func serve(ctx context.Context, cfg *config.Config, dispatcher *u2fcore.Dispatcher, log *logging.Logger) error {
	switch cfg.Transport {
	case "stdio":
		stream := transport.Stdio()
		defer stream.Close()
		return dispatcher.Run(stream, stream)

	case "unix":
		ln, err := transport.ListenUnix(cfg.SocketPath)
		if err != nil {
			return err
		}
		defer ln.Close()
		return serveAcceptLoop(ctx, ln, dispatcher, log)

	case "serial":
		f, err := transport.OpenSerial(cfg.SerialPath)
		if err != nil {
			return fmt.Errorf("open serial: %w", err)
		}
		defer f.Close()
		return dispatcher.Run(f, f)

	default:
		return fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

// acceptor is the subset of transport.UnixListener serve needs, letting
// tests substitute a fake listener without opening real sockets.
type acceptor interface {
	Accept() (io.ReadWriteCloser, error)
}

// serveAcceptLoop accepts one connection at a time and runs the
// dispatcher to completion over it, matching single-session
// model: the next host doesn't connect until the current one disconnects.
func serveAcceptLoop(ctx context.Context, ln acceptor, dispatcher *u2fcore.Dispatcher, log *logging.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		log.Info("host connected")
		if err := dispatcher.Run(conn, conn); err != nil {
			log.Warn("session ended with error", slog.Any("error", err))
		}
		conn.Close()
	}
}
