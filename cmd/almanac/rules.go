package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/rules"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect the harvest rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the built-in rules as YAML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := os.Stdout.Write(rules.DefaultYAML())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate a rules file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			set, err := rules.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, cli.FormatSuccess(fmt.Sprintf("✓ %s is valid (%d regions)", args[0], len(set.Regions))))
			return nil
		},
	})

	return cmd
}
