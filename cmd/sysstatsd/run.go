package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sysstats-project/sysstats-go/internal/config"
	"github.com/sysstats-project/sysstats-go/internal/process"
	"github.com/sysstats-project/sysstats-go/pkg/daemon"
	"github.com/sysstats-project/sysstats-go/pkg/discovery"
	"github.com/sysstats-project/sysstats-go/pkg/log"
	"github.com/sysstats-project/sysstats-go/pkg/providers/cpu"
	"github.com/sysstats-project/sysstats-go/pkg/providers/disks"
	"github.com/sysstats-project/sysstats-go/pkg/providers/gpu"
	"github.com/sysstats-project/sysstats-go/pkg/providers/memory"
	"github.com/sysstats-project/sysstats-go/pkg/providers/network"
	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/transport"
)

func newRunCommand() *cobra.Command {
	var (
		configPath string
		listenAddr string
		pidFile    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the statistics daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddress = listenAddr
			}
			return runDaemon(cfg, pidFile)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "configuration file path")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides the config file")
	cmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path")

	return cmd
}

func runDaemon(cfg *config.Config, pidFile string) error {
	lock, err := process.Acquire(pidFile)
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, closeLogger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogger()

	d := daemon.New(daemon.Config{
		Interval: cfg.UpdateInterval,
		Logger:   logger,
	})
	registerProviders(d, cfg, logger)

	d.Start()
	defer d.Stop()

	server := transport.NewServer(d, logger)
	if err := server.Listen(cfg.ListenAddress); err != nil {
		return err
	}
	defer server.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve()
	}()

	advertiser := discovery.NewAdvertiser()
	if cfg.MDNS {
		port := listenPort(server.Addr())
		txt := map[string]string{
			"version": version,
			"sensors": strconv.Itoa(len(d.AllSensors())),
		}
		if err := advertiser.Advertise(cfg.InstanceName, port, txt); err != nil {
			log.Warnf(logger, "main", "mDNS registration failed: %v", err)
		}
	}
	defer advertiser.Stop()

	log.Infof(logger, "main", "listening on %s", server.Addr())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-signals:
		log.Infof(logger, "main", "received %s, shutting down", sig)
		return nil
	case err := <-serveErr:
		return err
	}
}

func registerProviders(d *daemon.Daemon, cfg *config.Config, logger log.Logger) {
	build := map[string]func() (sensors.Provider, error){
		"cpu":    func() (sensors.Provider, error) { return cpu.NewProvider() },
		"memory": func() (sensors.Provider, error) { return memory.NewProvider() },
		"disk":   func() (sensors.Provider, error) { return disks.NewProvider(d) },
		"network": func() (sensors.Provider, error) {
			return network.NewProvider()
		},
		"gpu": func() (sensors.Provider, error) { return gpu.NewProvider() },
	}

	for _, name := range cfg.Providers {
		buildFn, ok := build[name]
		if !ok {
			log.Warnf(logger, "main", "unknown provider %q in config, skipping", name)
			continue
		}
		p, err := buildFn()
		if err != nil {
			log.Warnf(logger, "main", "provider %q unavailable: %v", name, err)
			continue
		}
		if err := d.RegisterProvider(p); err != nil {
			log.Errorf(logger, "main", err, "failed to register provider %q", name)
			continue
		}
		log.Infof(logger, "main", "registered provider %q", name)
	}
}

func buildLogger(cfg *config.Config) (log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogFile == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slogLevel(level),
		})
		return log.NewSlogAdapter(slog.New(handler)), func() {}, nil
	}
	fl, err := log.NewFileLogger(cfg.LogFile, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return fl, func() { fl.Close() }, nil
}

func slogLevel(l log.Level) slog.Level {
	switch l {
	case log.LevelDebug:
		return slog.LevelDebug
	case log.LevelWarn:
		return slog.LevelWarn
	case log.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func listenPort(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
