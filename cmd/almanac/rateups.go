package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/summon-almanac/internal/catalog"
	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/common"
)

func rateupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rateups <servant>",
		Short: "Show every banner a servant was featured on",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRateups,
	}
}

func runRateups(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := strings.Join(args, " ")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	servants, err := loadServants(ctx, store)
	if err != nil {
		return err
	}
	servant, ok := catalog.New(servants).Lookup(name)
	if !ok {
		return common.NewUserError(fmt.Sprintf("no servant named %q", name), common.ErrNotFound)
	}

	appearances, err := store.GetAppearances(ctx, servant.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, cli.FormatAppearances(servant, appearances))
	return nil
}
