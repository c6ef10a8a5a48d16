package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"charnnections/internal/config"
	"charnnections/internal/corpus"
)

var (
	seedStandardsPath string
	seedExclude       []string
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [paths...]",
		Short: "Load character and standards files into the database",
		RunE:  runSeed,
	}
	cmd.Flags().StringVar(&seedStandardsPath, "standards", "", "Standards file (defaults to the config's standards)")
	cmd.Flags().StringSliceVar(&seedExclude, "exclude", nil, "Paths to skip")
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	roots := args
	if len(roots) == 0 {
		roots = cfg.Corpus
	}
	if len(roots) == 0 {
		return fmt.Errorf("no corpus paths given and none configured")
	}

	var standards *config.Standards
	if path := firstNonEmpty(seedStandardsPath, cfg.Standards); path != "" {
		standards, err = config.LoadStandards(path)
		if err != nil {
			return err
		}
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := corpus.Run(ctx, db, roots, corpus.Options{Standards: standards, Exclude: seedExclude})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Seeding complete.")
	fmt.Fprintf(os.Stdout, "  Characters upserted: %d\n", result.CharactersUpserted)
	fmt.Fprintf(os.Stdout, "  Standards upserted:  %d\n", result.StandardsUpserted)
	fmt.Fprintf(os.Stdout, "  Files read:          %d\n", result.FilesRead)
	fmt.Fprintf(os.Stdout, "  Files skipped:       %d\n", result.FilesSkipped)

	if len(result.UnknownAttributes) > 0 {
		fmt.Fprintf(os.Stdout, "\nAttributes without a standard (%d):\n", len(result.UnknownAttributes))
		for _, key := range result.UnknownAttributes {
			fmt.Fprintf(os.Stdout, "  - %s\n", key)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("seeding completed with errors")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
