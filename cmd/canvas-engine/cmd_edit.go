package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	var (
		id        string
		field     string
		value     string
		moveTo    string
		deleteIDs string
		add       bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Apply a mutation to a record batch and print the reconciled JSON",
		Long: `Applies exactly one mutation and writes the full batch, in its original
envelope, to stdout or --output. Untouched records and fields round-trip
byte-identical.

  edit data.json --id R1 --move-to Closed
  edit data.json --id R1 --field field2 --value "new text"
  edit data.json --add
  edit data.json --delete R1,R2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng, err := loadEngine(args[0], logger)
			if err != nil {
				return err
			}

			switch {
			case moveTo != "":
				if id == "" {
					return fmt.Errorf("edit: --move-to requires --id")
				}
				if !eng.MoveCard(id, moveTo) {
					return fmt.Errorf("edit: record %q not found", id)
				}
			case field != "":
				if id == "" {
					return fmt.Errorf("edit: --field requires --id")
				}
				if !eng.EditCell(id, field, value) {
					return fmt.Errorf("edit: record %q or field %q not found", id, field)
				}
			case add:
				newID := eng.AddRecord()
				if newID == "" {
					return fmt.Errorf("edit: no template record to clone")
				}
				logger.Info("record added", "id", newID)
			case deleteIDs != "":
				ids := splitIDs(deleteIDs)
				if !eng.DeleteRecords(ids) {
					return fmt.Errorf("edit: none of %v found", ids)
				}
			default:
				return fmt.Errorf("edit: one of --move-to, --field, --add, --delete is required")
			}

			out, err := eng.ExportJSON()
			if err != nil {
				return fmt.Errorf("edit: exporting batch: %w", err)
			}
			if output != "" {
				return os.WriteFile(output, out, 0o644)
			}
			_, err = os.Stdout.Write(append(out, '\n'))
			return err
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "record id to mutate")
	cmd.Flags().StringVar(&field, "field", "", "field key to set (with --value)")
	cmd.Flags().StringVar(&value, "value", "", "new value for --field")
	cmd.Flags().StringVar(&moveTo, "move-to", "", "destination column for the record")
	cmd.Flags().StringVar(&deleteIDs, "delete", "", "comma-separated record ids to delete")
	cmd.Flags().BoolVar(&add, "add", false, "append a blank record shaped like the first one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the reconciled batch to a file")
	return cmd
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
