package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show batch statistics: record count, columns, enabled views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng, err := loadEngine(args[0], logger)
			if err != nil {
				return err
			}

			st := eng.Stats()
			if st.Title != "" {
				fmt.Printf("Title:   %s\n", st.Title)
			}
			fmt.Printf("Records: %d\n", st.Records)
			fmt.Printf("Columns: %d\n", st.Columns)

			if len(st.Buckets) > 0 {
				fmt.Println("Buckets:")
				for _, name := range slices.Sorted(maps.Keys(st.Buckets)) {
					fmt.Printf("  %-20s %d\n", name, st.Buckets[name])
				}
			}

			fmt.Println("Enabled views:")
			for _, v := range st.EnabledViews {
				fmt.Printf("  %s\n", v)
			}

			return nil
		},
	}
}
