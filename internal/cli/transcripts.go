package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdesk/internal/store"
)

func newTranscriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transcripts",
		Aliases: []string{"tx"},
		Short:   "Browse and export archived sessions",
	}

	cmd.AddCommand(newTranscriptsListCmd())
	cmd.AddCommand(newTranscriptsShowCmd())
	cmd.AddCommand(newTranscriptsExportCmd())
	cmd.AddCommand(newTranscriptsSearchCmd())
	cmd.AddCommand(newTranscriptsDeleteCmd())
	return cmd
}

func newTranscriptsListCmd() *cobra.Command {
	var (
		agentID string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ended sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, closer, err := openArchive()
			if err != nil {
				return err
			}
			defer closer.Close()

			list, err := ts.List(cmd.Context(), agentID, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No transcripts.")
				return nil
			}
			for _, t := range list {
				fmt.Fprintf(out, "  %s  %-18s %3d msgs %2d drafts  %s\n",
					t.SessionID, t.AgentName, t.MessageCount, t.ArtifactCount,
					t.EndedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "only show sessions with this agent")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of transcripts")
	return cmd
}

func newTranscriptsShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, closer, err := openArchive()
			if err != nil {
				return err
			}
			defer closer.Close()

			snap, err := ts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			md := store.Markdown(snap)
			if !raw {
				if out, err := glamour.Render(md, "auto"); err == nil {
					md = out
				}
			}
			_, err = io.WriteString(cmd.OutOrStdout(), md)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	return cmd
}

func newTranscriptsExportCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export an archived session as markdown or JSON",
		Long: "Writes the transcript to --output, or to the exports directory when --output is \"auto\". " +
			"Without --output the transcript goes to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := store.ParseFormat(format)
			if err != nil {
				return err
			}

			ts, closer, err := openArchive()
			if err != nil {
				return err
			}
			defer closer.Close()

			snap, err := ts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				return store.Export(cmd.OutOrStdout(), snap, f)
			}
			if output == "auto" {
				output = filepath.Join(paths.Exports, snap.SessionID+exportExt(f))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o700); err != nil {
				return err
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := store.Export(file, snap, f); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", snap.SessionID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "export format (markdown, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or \"auto\" for the exports directory")
	return cmd
}

func exportExt(f store.Format) string {
	if f == store.FormatJSON {
		return ".json"
	}
	return ".md"
}

func newTranscriptsSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across archived messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, closer, err := openArchive()
			if err != nil {
				return err
			}
			defer closer.Close()

			matches, err := ts.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(out, "  %s #%d %-18s %s\n", m.SessionID, m.MessageID, m.AgentName, m.Snippet)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of matches")
	return cmd
}

func newTranscriptsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, closer, err := openArchive()
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := ts.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
