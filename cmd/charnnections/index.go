package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"charnnections/internal/index"
)

func indexCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the attribute index and print its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(top)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "Number of largest eligible pairs to print")
	return cmd
}

func runIndex(top int) error {
	ctx := context.Background()

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	entities, err := db.ListAll(ctx)
	if err != nil {
		return err
	}
	idx := index.Build(entities)
	stats := idx.Stats()

	fmt.Fprintf(os.Stdout, "Characters scanned:     %d\n", stats.EntitiesScanned)
	fmt.Fprintf(os.Stdout, "  with attributes:      %d\n", stats.WithAttributes)
	fmt.Fprintf(os.Stdout, "  without attributes:   %d\n", stats.WithoutAttributes)
	fmt.Fprintf(os.Stdout, "Attribute values seen:  %d\n", stats.AttributesSeen)
	fmt.Fprintf(os.Stdout, "Unique pairs:           %d\n", stats.UniquePairs)
	fmt.Fprintf(os.Stdout, "Pairs with %d+ holders:  %d\n", index.MinGroupSize, stats.EligiblePairs)

	entries := idx.Top(top)
	if len(entries) == 0 {
		fmt.Fprintf(os.Stdout, "\nNo attribute is shared by %d or more characters.\n", index.MinGroupSize)
		return nil
	}
	fmt.Fprintln(os.Stdout, "\nTop eligible pairs:")
	for _, entry := range entries {
		fmt.Fprintf(os.Stdout, "  - %s = %s (%d)\n", entry.Key, entry.Value, len(entry.Characters))
	}
	return nil
}
