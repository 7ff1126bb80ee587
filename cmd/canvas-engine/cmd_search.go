package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <file> <query>",
		Short: "Search a record batch and print matching rows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng, err := loadEngine(args[0], logger)
			if err != nil {
				return err
			}

			rows := eng.Search(args[1])
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}

			view := eng.Table()
			for i, row := range rows {
				fmt.Printf("[%d] %s\n", i+1, row.ID)
				for _, col := range view.Columns {
					if cell := row.Cells[col.APIName]; cell != "" && cell != "-" {
						fmt.Printf("    %-16s %s\n", col.Label+":", truncate(cell, 80))
					}
				}
			}
			if len(rows) == 0 {
				fmt.Println("No matching records.")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max results (0 = unlimited)")
	return cmd
}
