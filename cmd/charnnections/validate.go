package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"charnnections/internal/puzzle"
	"charnnections/internal/validate"
)

func validateCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that the corpus can produce puzzles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Also check the stored puzzle for this date")
	return cmd
}

func runValidate(date string) error {
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

	report, err := validate.Corpus(ctx, db, db)
	if err != nil {
		return err
	}

	if date != "" {
		date, err = puzzle.ParseDate(date)
		if err != nil {
			return err
		}
		stored, err := db.FindByDate(ctx, date)
		if err != nil {
			return err
		}
		if stored == nil {
			fmt.Fprintf(os.Stdout, "No puzzle stored for %s.\n", date)
		} else {
			report.Issues = append(report.Issues, validate.Puzzle(stored.Groups).Issues...)
		}
	}

	errorIssues := report.Errors()
	warnIssues := report.Warnings()

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Entity
		if issue.Group > 0 {
			location = fmt.Sprintf("group %d", issue.Group)
			if issue.Entity != "" {
				location = fmt.Sprintf("%s [%s]", location, issue.Entity)
			}
		}
		if location == "" {
			fmt.Fprintf(out, "  - %s (%s)\n", issue.Message, issue.Code)
			continue
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
