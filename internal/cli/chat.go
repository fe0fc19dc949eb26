package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdesk/internal/logging"
	"github.com/soyeahso/agentdesk/internal/tui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [agent-id]",
		Short: "Chat with an assistant in the terminal",
		Long: "Opens the terminal UI. With an agent id the chat starts immediately; " +
			"otherwise an agent is picked from the catalog.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating directories: %w", err)
			}

			// The terminal belongs to the UI, so logs only go to a file.
			tuiLog, closeLog, err := logging.NewWithOptions(logging.Options{
				Level: cfg.Logging.Level,
				Style: logging.StyleNone,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closeLog.Close()

			d, err := newDesk(cfg, paths, tuiLog)
			if err != nil {
				return err
			}
			defer d.Close()

			m := tui.New(d.sessions, d.catalog.List(), tuiLog)
			if len(args) == 1 {
				agent, err := d.catalog.Lookup(args[0])
				if err != nil {
					return err
				}
				m = m.StartWith(agent)
			}
			return tui.Run(cmd.Context(), m)
		},
	}
}
