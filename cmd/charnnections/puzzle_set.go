package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"charnnections/internal/attr"
	"charnnections/internal/puzzle"
)

type curatedFile struct {
	Date   string `yaml:"date"`
	Groups []struct {
		Trait      string     `yaml:"trait"`
		TraitValue attr.Value `yaml:"traitValue"`
		Difficulty int        `yaml:"difficulty"`
		IDs        []int64    `yaml:"ids"`
	} `yaml:"groups"`
}

func puzzleSetCmd() *cobra.Command {
	var dateFlag string
	cmd := &cobra.Command{
		Use:   "set <file>",
		Short: "Set a hand-curated puzzle from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, inputs, err := readCurated(args[0], dateFlag)
			if err != nil {
				return err
			}
			return withService(func(ctx context.Context, service *puzzle.Service) error {
				p, err := service.SetPuzzle(ctx, date, inputs)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Puzzle set for %s: %s\n", p.Date, p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "", "Date to set (overrides the file; defaults to today)")
	return cmd
}

func readCurated(path, dateOverride string) (string, []puzzle.GroupInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f curatedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	inputs := make([]puzzle.GroupInput, len(f.Groups))
	for i, g := range f.Groups {
		inputs[i] = puzzle.GroupInput{
			Trait:      g.Trait,
			TraitValue: g.TraitValue,
			Difficulty: g.Difficulty,
			IDs:        g.IDs,
		}
	}

	date := f.Date
	if dateOverride != "" {
		date = dateOverride
	}
	return date, inputs, nil
}
