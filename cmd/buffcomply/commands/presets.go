package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manages saved scraper configurations.",
	}
	cmd.AddCommand(newPresetsListCmd(), newPresetsDeleteCmd())
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists saved presets.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := openPresets(current.cfg, current.logger).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load presets: %w", err)
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "URLs", "Keywords", "Updated"})
			for _, p := range all {
				updated := ""
				if !p.UpdatedAt.IsZero() {
					updated = p.UpdatedAt.Format("2006-01-02 15:04")
				}
				t.AppendRow(table.Row{p.Name, len(p.URLs), strings.Join(p.AllKeywords(), ", "), updated})
			}
			t.Render()
			return nil
		},
	}
}

func newPresetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Deletes a preset.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openPresets(current.cfg, current.logger).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted preset %q\n", args[0])
			return nil
		},
	}
}
