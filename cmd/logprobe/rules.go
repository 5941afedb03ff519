package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/clarabennett2626/logprobe/internal/patterns"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the matching rules used as evidence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderRow(false).
			Headers("NAME", "EXPRESSION")
		for _, r := range patterns.All() {
			t.Row(string(r.Name), r.Expr)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
