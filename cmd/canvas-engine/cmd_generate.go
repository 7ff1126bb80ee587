package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/canvas-engine/internal/models"
)

func generateCmd() *cobra.Command {
	var (
		count  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a record batch from a natural-language prompt via Claude",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			gen := newGenerator(logger)
			if gen == nil {
				return fmt.Errorf("generate: ANTHROPIC_API_KEY is not set")
			}
			if count <= 0 {
				count = cfg.Generate.Count
			}

			batch, err := gen.Generate(cmd.Context(), args[0], count)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			out, err := models.MarshalBatch(batch)
			if err != nil {
				return fmt.Errorf("generate: encoding batch: %w", err)
			}
			if output != "" {
				return os.WriteFile(output, out, 0o644)
			}
			_, err = os.Stdout.Write(append(out, '\n'))
			return err
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "number of records to generate (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the batch to a file")
	return cmd
}
