package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soyeahso/agentdesk/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get or set configuration values",
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// readKey parses a dot path and loads the raw config it addresses.
func readKey(key string) ([]string, map[string]any, error) {
	path, err := config.ParseConfigPath(key)
	if err != nil {
		return nil, nil, err
	}
	raw, err := config.LoadRaw(paths.Config)
	if err != nil {
		return nil, nil, err
	}
	return path, raw, nil
}

// editKey applies edit to the raw config at key and writes the file back.
// Validation problems in the result are reported on w but do not undo
// the edit, so a multi-step change can pass through an invalid state.
func editKey(w io.Writer, key string, edit func(raw map[string]any, path []string) error) error {
	path, raw, err := readKey(key)
	if err != nil {
		return err
	}
	if err := edit(raw, path); err != nil {
		return err
	}
	if err := config.SaveRaw(paths.Config, raw); err != nil {
		return err
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	for _, issue := range config.Validate(&cfg) {
		fmt.Fprintf(w, "warning: %s\n", issue)
	}
	return nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Print a configuration value",
		Example: "  agentdesk config get session.responseDelayMs\n  agentdesk config get agents.list.0.name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, raw, err := readKey(args[0])
			if err != nil {
				return err
			}
			val, ok := config.GetValueAtPath(raw, path)
			if !ok {
				return fmt.Errorf("key %q not found", args[0])
			}
			return printValue(cmd.OutOrStdout(), val)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value",
		Long:    "Set a configuration value. The value is read as YAML, so numbers, booleans and [a, b] lists keep their types.",
		Example: "  agentdesk config set session.archive none\n  agentdesk config set attachments.allowedExtensions '[.md, .txt]'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := parseValue(args[1])
			err := editKey(cmd.ErrOrStderr(), args[0], func(raw map[string]any, path []string) error {
				return config.SetValueAtPath(raw, path, value)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", args[0], value)
			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := editKey(cmd.ErrOrStderr(), args[0], func(raw map[string]any, path []string) error {
				if !config.UnsetValueAtPath(raw, path) {
					return fmt.Errorf("key %q not found", args[0])
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), paths.Config)
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			issues := config.Validate(&cfg)
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintf(out, "%s is valid\n", paths.Config)
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
		},
	}
}

// printValue writes scalars on one line and collections as YAML.
func printValue(w io.Writer, v any) error {
	switch v.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, v)
		return err
	}
}

// parseValue reads a command-line value as a YAML scalar or flow
// sequence, so "true", "42" and "[md, txt]" keep their types. Anything
// that does not parse is stored as a plain string.
func parseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return s
	}
	return v
}
