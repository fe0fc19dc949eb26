package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tillberg/autorestart"
	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/gateway"
	"github.com/soyeahso/agentdesk/internal/logging"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket gateway and the idle session reaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating directories: %w", err)
			}

			srvLog, closeLog, err := logging.NewWithOptions(logging.Options{
				Level:   cfg.Logging.Level,
				Style:   cfg.Logging.ConsoleStyle,
				Console: cmd.ErrOrStderr(),
				File:    cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closeLog.Close()

			if dev {
				srvLog.Info().Msg("dev mode: restarting when the binary changes")
				go autorestart.RestartOnChange()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, srvLog)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")
	cmd.Flags().BoolVar(&dev, "dev", false, "restart automatically when the executable is rebuilt")

	return cmd
}

// serve runs the gateway and the reaper until ctx is done or either fails.
func serve(ctx context.Context, cfg config.Config, log *logging.Logger) error {
	d, err := newDesk(cfg, paths, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	srv := gateway.New(cfg, d.sessions, d.catalog, log, gateway.WithHooks(d.hooks))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return d.sessions.Run(gctx) })
	return g.Wait()
}
