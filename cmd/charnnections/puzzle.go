package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

func puzzleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Inspect and manage daily puzzles from the CLI",
	}
	cmd.AddCommand(puzzleTodayCmd())
	cmd.AddCommand(puzzleRegenerateCmd())
	cmd.AddCommand(puzzleSetCmd())
	cmd.AddCommand(puzzleCheckCmd())
	cmd.AddCommand(puzzleSolutionCmd())
	return cmd
}

func withService(fn func(ctx context.Context, service *puzzle.Service) error) error {
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

	service, _ := newService(cfg, db, logger)
	return fn(ctx, service)
}

// printPuzzle lists the groups when reveal is set, otherwise the sixteen
// characters in id order.
func printPuzzle(out io.Writer, p *store.DailyPuzzle, reveal bool) {
	fmt.Fprintf(out, "Puzzle: %s\n", p.ID)
	fmt.Fprintf(out, "Date: %s\n", p.Date)
	if !reveal {
		var characters []store.CharacterRef
		for _, g := range p.Groups {
			characters = append(characters, g.Characters...)
		}
		sort.Slice(characters, func(i, j int) bool { return characters[i].ID < characters[j].ID })
		fmt.Fprintln(out)
		printCharacters(out, characters)
		return
	}
	for i, g := range p.Groups {
		fmt.Fprintf(out, "\nGroup %d: %s = %s (difficulty %d)\n", i+1, g.Trait, g.TraitValue, g.Difficulty)
		printCharacters(out, g.Characters)
	}
}

func printCharacters(out io.Writer, characters []store.CharacterRef) {
	for _, c := range characters {
		fmt.Fprintf(out, "  - %d %s (%s)\n", c.ID, c.Name, c.Series)
	}
}

func puzzleTodayCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Get or create today's puzzle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, service *puzzle.Service) error {
				p, err := service.Today(ctx)
				if err != nil {
					return err
				}
				printPuzzle(os.Stdout, p, reveal)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print group traits")
	return cmd
}

func puzzleRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Replace today's puzzle with a freshly generated one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, service *puzzle.Service) error {
				p, err := service.RegenerateToday(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Regenerated puzzle for %s: %s\n", p.Date, p.ID)
				return nil
			})
		},
	}
}

func puzzleSolutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solution <puzzle-id>",
		Short: "Reveal a puzzle's groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, service *puzzle.Service) error {
				p, err := service.Solution(ctx, args[0])
				if err != nil {
					return err
				}
				printPuzzle(os.Stdout, p, true)
				return nil
			})
		},
	}
}
