package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show inferred field roles and derived columns for a record batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng, err := loadEngine(args[0], logger)
			if err != nil {
				return err
			}

			roles := eng.Roles()
			fmt.Println("Field roles:")
			fmt.Printf("  %-12s %s\n", "id", roles.ID)
			fmt.Printf("  %-12s %s\n", "start", roles.Start)
			fmt.Printf("  %-12s %s\n", "end", roles.End)
			fmt.Printf("  %-12s %s\n", "category", roles.Category)
			fmt.Printf("  %-12s %s\n", "description", roles.Description)

			board := eng.Kanban()
			fmt.Println("\nColumns:")
			for _, col := range board.Columns {
				fmt.Printf("  %-20s %s\n", col.Name, col.Color)
			}
			if len(board.Columns) == 0 {
				fmt.Println("  (none declared)")
			}

			fmt.Println("\nEnabled views:")
			for _, v := range eng.EnabledViews() {
				fmt.Printf("  %s\n", v)
			}

			return nil
		},
	}
}
