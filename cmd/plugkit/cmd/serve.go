package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/plugkit"
	"github.com/GoCodeAlone/plugkit/configwatcher"
	"github.com/GoCodeAlone/plugkit/devhost"
	"github.com/GoCodeAlone/plugkit/feeders"
	"github.com/GoCodeAlone/plugkit/internal/sample"
)

// ServeOptions are the flags of the serve command.
type ServeOptions struct {
	ConfigPath   string
	Section      string
	EnvPrefix    string
	Addr         string
	VaultDir     string
	ConsoleFloor string
	Watch        bool
	Toasts       bool
	JSONLogs     bool
	Verbose      bool
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the sample module into a development host and serve it over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunServe(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "settings file (yaml, toml or json)")
	flags.StringVar(&opts.Section, "section", "", "top-level section of the settings file to read")
	flags.StringVar(&opts.EnvPrefix, "env-prefix", "PLUGKIT", "prefix of settings environment variables")
	flags.StringVar(&opts.Addr, "addr", "127.0.0.1:8787", "HTTP listen address")
	flags.StringVar(&opts.VaultDir, "vault", ".", "vault directory")
	flags.StringVar(&opts.ConsoleFloor, "console-floor", "trace", "lowest severity printed on the terminal (the recorder keeps everything)")
	flags.BoolVarP(&opts.Watch, "watch", "w", false, "reapply settings when the settings file changes")
	flags.BoolVar(&opts.Toasts, "toasts", true, "draw toasts on the terminal")
	flags.BoolVar(&opts.JSONLogs, "json-logs", false, "write host logs as JSON")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug host logs")
	return cmd
}

// LoadSettings reads the sample settings from the defaults, the settings
// file when given and the environment, in that order.
func LoadSettings(opts *ServeOptions, logger feeders.DebugLogger) (*sample.Settings, error) {
	var sources []feeders.Feeder
	if opts.ConfigPath != "" {
		switch f := feeders.ForFile(opts.ConfigPath).(type) {
		case *feeders.YamlFeeder:
			f.WithKey(opts.Section).SetVerboseDebug(logger)
			sources = append(sources, f)
		case *feeders.TomlFeeder:
			f.WithKey(opts.Section).SetVerboseDebug(logger)
			sources = append(sources, f)
		case *feeders.JSONFeeder:
			f.WithKey(opts.Section).SetVerboseDebug(logger)
			sources = append(sources, f)
		}
	}
	env := feeders.NewEnvFeeder(opts.EnvPrefix)
	env.SetVerboseDebug(logger)
	sources = append(sources, env)

	settings := &sample.Settings{}
	if err := feeders.Load(settings, sources...); err != nil {
		return nil, err
	}
	return settings, nil
}

// RunServe runs the development host until ctx ends.
func RunServe(ctx context.Context, opts *ServeOptions, stdout, stderr io.Writer) error {
	logger := newHostLogger(opts, stderr)

	settings, err := LoadSettings(opts, logger)
	if err != nil {
		return err
	}
	floor, err := plugkit.ParseSeverity(opts.ConsoleFloor)
	if err != nil {
		return fmt.Errorf("console-floor: %w", err)
	}

	recorder := devhost.NewRecorder(1000)
	console := NewConsole(stderr, floor, recorder)

	hostOpts := []devhost.Option{
		devhost.WithVaultDir(opts.VaultDir),
		devhost.WithLogger(logger),
	}
	if opts.Toasts {
		hostOpts = append(hostOpts, devhost.WithNotifier(devhost.NewTerminalNotifier(stdout)))
	}
	host := devhost.New(sample.Name, hostOpts...)

	eventLog := plugkit.NewFunctionalObserver("serve", func(ctx context.Context, event plugkit.CloudEvent) error {
		logger.Debug("Module event", "type", event.Type(), "id", event.ID(), "data", string(event.Data()))
		return nil
	})
	module := sample.New(host, plugkit.WithConsole(console), plugkit.WithObserver(eventLog))
	if err := module.Load(settings); err != nil {
		return fmt.Errorf("load %s: %w", module.Name(), err)
	}
	defer func() {
		if err := module.Unload(); err != nil {
			logger.Error("Unload failed", "module", module.Name(), "error", err)
		}
	}()

	host.Start(ctx)
	defer host.Stop()

	if opts.Watch && opts.ConfigPath != "" {
		watcher, err := configwatcher.New(configwatcher.Config{
			Path:   opts.ConfigPath,
			Logger: logger,
			OnChange: func(path string) {
				updated, err := LoadSettings(opts, logger)
				if err != nil {
					logger.Warn("Ignoring invalid settings", "path", path, "error", err)
					return
				}
				if err := module.ApplySettings(updated); err != nil {
					logger.Error("Applying settings failed", "path", path, "error", err)
					return
				}
				logger.Info("Settings reapplied", "path", path, "logLevel", updated.LogLevel.String())
			},
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           devhost.NewRouter(host, recorder),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving dev host", "addr", opts.Addr, "plugin", host.PluginID())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewConsole prints lines at or above floor to w and records every line.
func NewConsole(w io.Writer, floor plugkit.Severity, recorder *devhost.Recorder) plugkit.Console {
	terminal := plugkit.NewWriterConsole(w)
	if floor == plugkit.SeverityTrace {
		return plugkit.NewTeeConsole(terminal, recorder)
	}
	return plugkit.NewTeeConsole(plugkit.NewMinSeverityConsole(terminal, floor), recorder)
}

func newHostLogger(opts *ServeOptions, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSONLogs {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
