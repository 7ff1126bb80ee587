package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/canvas-engine/internal/models"
	"github.com/ajitpratap0/canvas-engine/internal/transform"
)

func transformCmd() *cobra.Command {
	var (
		view    string
		asJSON  bool
		maxCell int
	)

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Project a record batch as a table, kanban, or gantt view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			eng, err := loadEngine(args[0], logger)
			if err != nil {
				return err
			}

			if view == "" {
				view = string(eng.DefaultView())
			}
			projected, err := eng.View(models.ViewKind(view))
			if err != nil {
				return fmt.Errorf("transform: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(projected)
			}

			switch v := projected.(type) {
			case models.TableView:
				renderTable(v, maxCell)
			case models.KanbanView:
				renderKanban(v)
			case models.GanttView:
				renderGantt(v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "view kind: table, kanban, or gantt (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the view as JSON instead of rendering it")
	cmd.Flags().IntVar(&maxCell, "max-cell", 40, "max characters per rendered cell")
	return cmd
}

func renderTable(v models.TableView, maxCell int) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)

	header := table.Row{"id"}
	for _, col := range v.Columns {
		header = append(header, col.Label)
	}
	w.AppendHeader(header)

	for _, row := range v.Rows {
		out := table.Row{row.ID}
		for _, col := range v.Columns {
			out = append(out, truncate(row.Cells[col.APIName], maxCell))
		}
		w.AppendRow(out)
	}
	w.Render()
}

func renderKanban(v models.KanbanView) {
	byColumn := make(map[string][]models.KanbanCard)
	for _, card := range v.Features {
		byColumn[card.Column] = append(byColumn[card.Column], card)
	}

	for _, col := range v.Columns {
		fmt.Printf("%s (%d) %s\n", col.Name, len(byColumn[col.Name]), col.Color)
		for _, card := range byColumn[col.Name] {
			fmt.Printf("  - [%s] %s\n", card.ID, card.Name)
			if card.Description != "" {
				fmt.Printf("      %s\n", truncate(card.Description, 80))
			}
		}
	}
}

func renderGantt(v models.GanttView) {
	w := table.NewWriter()
	w.SetOutputMirror(os.Stdout)
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"id", "name", "start", "end", "status", "group", "owner"})

	for _, f := range v.Features {
		w.AppendRow(table.Row{
			f.ID,
			truncate(f.Name, 40),
			transform.FormatDate(f.StartAt),
			transform.FormatDate(f.EndAt),
			refName(f.Status),
			refName(f.Group),
			refName(f.Owner),
		})
	}
	w.Render()

	for _, m := range v.Markers {
		fmt.Printf("marker: %s — %s\n", transform.FormatDate(m.Date), m.Label)
	}
}

func refName(r *models.GanttRef) string {
	if r == nil {
		return "-"
	}
	return r.Name
}
