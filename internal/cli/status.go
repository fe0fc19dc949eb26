package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/gateway"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show agentdesk paths and a configuration summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n", version.Info())

			fmt.Fprintf(out, "Config:   %s\n", paths.Config)
			fmt.Fprintf(out, "Data:     %s\n", paths.Data)
			fmt.Fprintf(out, "Archive:  %s\n", paths.Archive)
			fmt.Fprintf(out, "Exports:  %s\n", paths.Exports)
			fmt.Fprintln(out)

			if _, err := os.Stat(paths.Config); os.IsNotExist(err) {
				fmt.Fprintln(out, "Config:   not found (using defaults)")
			}
			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Fprintf(out, "Config:   error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Gateway:  %s auth=%s tls=%v\n",
				gateway.ResolveBindAddr(cfg.Gateway), cfg.Gateway.Auth.Mode, cfg.Gateway.TLS.Enabled)
			fmt.Fprintf(out, "Session:  delay=%s timeout=%s idle=%s archive=%s\n",
				cfg.Session.ResponseDelay(), cfg.Session.ResponseTimeout(),
				cfg.Session.IdleTimeout(), cfg.Session.Archive)

			if nc := cfg.Notify.NATS; nc != nil && nc.URL != "" {
				subject := nc.Subject
				if subject == "" {
					subject = config.DefaultNATSSubject
				}
				fmt.Fprintf(out, "NATS:     %s subject=%s\n", nc.URL, subject)
			} else {
				fmt.Fprintln(out, "NATS:     (not configured)")
			}

			for _, a := range catalog.FromConfig(cfg.Agents.List, catalog.Default(), log).List() {
				fmt.Fprintf(out, "Agent:    id=%s name=%q status=%s\n", a.ID, a.Name, a.Status)
			}

			hm := hooks.NewManager(log)
			if hooks.RegisterConfig(hm, cfg.Hooks) > 0 {
				for _, ev := range hm.Events() {
					fmt.Fprintf(out, "Hook:     %s (%d)\n", ev, hm.Count(ev))
				}
			}

			if issues := config.Validate(&cfg); len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}
