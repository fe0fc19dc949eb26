package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/config"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect the agent catalog",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsShowCmd())
	return cmd
}

// loadCatalog returns the built-in catalog merged with config overrides.
// A broken config file falls back to the built-in agents.
func loadCatalog() *catalog.Catalog {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Warn().Err(err).Msg("using built-in agents")
		cfg = config.Defaults()
	}
	return catalog.FromConfig(cfg.Agents.List, catalog.Default(), log)
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the selectable agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, a := range loadCatalog().List() {
				fmt.Fprintf(out, "  %-14s %-18s %-14s %s\n", a.ID, a.Name, a.Role, a.Status)
			}
			return nil
		},
	}
}

func newAgentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <agent-id>",
		Short: "Show details about an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadCatalog().Lookup(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:           %s\n", a.ID)
			fmt.Fprintf(out, "Name:         %s\n", a.Name)
			fmt.Fprintf(out, "Role:         %s\n", a.Role)
			fmt.Fprintf(out, "Status:       %s\n", a.Status)
			if a.Description != "" {
				fmt.Fprintf(out, "Description:  %s\n", a.Description)
			}
			if len(a.Capabilities) > 0 {
				fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(a.Capabilities, ", "))
			}
			return nil
		},
	}
}
