package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/astronum/backend/internal/generator"
)

func datagenCmd() *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		outputDir   string
		writeStdout bool
	)
	cmd := &cobra.Command{
		Use:   "datagen",
		Short: "Generate a deterministic synthetic people dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if writeStdout {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(dataset)
			}
			if err := generator.WriteDataset(dataset, outputDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d readings and %d comparisons into %s\n",
				len(dataset.Readings), len(dataset.Comparisons), outputDir)
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.NumPeople, "people", cfg.NumPeople, "number of people to generate")
	cmd.Flags().IntVar(&cfg.NumComparisons, "comparisons", cfg.NumComparisons, "number of compatibility pairs to generate")
	cmd.Flags().Float64Var(&cfg.BirthTimeChance, "birth-time-chance", cfg.BirthTimeChance, "probability a person has a birth time and place")
	cmd.Flags().Float64Var(&cfg.OffsetChance, "offset-chance", cfg.OffsetChance, "probability a timed person gives a UTC offset instead of a zone")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for deterministic generation")
	cmd.Flags().StringVar(&outputDir, "output-dir", "data/seed", "directory to write readings.json and comparisons.json")
	cmd.Flags().BoolVar(&writeStdout, "stdout", false, "write the combined dataset to stdout instead of files")
	return cmd
}
