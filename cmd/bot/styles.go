package main

import (
	"fmt"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
	"github.com/spf13/cobra"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List summary styles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, s := range models.Styles {
			fmt.Fprintf(out, "%-14s %s\n", s, s.Description())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}
