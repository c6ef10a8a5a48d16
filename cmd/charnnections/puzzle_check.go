package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"charnnections/internal/puzzle"
)

func puzzleCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <puzzle-id> <id> <id> <id> <id>",
		Short: "Check whether four characters form a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, service *puzzle.Service) error {
				verdict, err := service.CheckGuess(ctx, args[0], ids)
				if err != nil {
					return err
				}
				if !verdict.Correct {
					fmt.Fprintln(os.Stdout, "Incorrect.")
					return nil
				}
				g := verdict.Group
				fmt.Fprintf(os.Stdout, "Correct: %s = %s (difficulty %d)\n", g.Trait, g.TraitValue, g.Difficulty)
				return nil
			})
		},
	}
}

func parseIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid character id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
