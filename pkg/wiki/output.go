package wiki

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/reddit-harvest/pkg/export"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Print writes every section to w as console tables.
func Print(w io.Writer, a *Article) {
	rule := strings.Repeat("=", 60)
	for _, s := range a.Sections {
		fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, strings.ToUpper(s.Name), rule)

		switch {
		case len(s.Tables) == 1 && !s.Parts:
			printTable(w, s.Tables[0])
		case len(s.Tables) > 0:
			for i, t := range s.Tables {
				fmt.Fprintf(w, "\n--- Part %d ---\n", i+1)
				printTable(w, t)
			}
		case s.Values != nil:
			t := export.NewTable(w)
			t.AppendHeader(table.Row{"Category", "Value"})
			for _, k := range s.Keys {
				t.AppendRow(table.Row{k, s.Values[k]})
			}
			t.Render()
		default:
			fmt.Fprintln(w, s.Text)
		}
	}
}

func printTable(w io.Writer, tbl Table) {
	t := export.NewTable(w)
	if len(tbl.Header) > 0 {
		t.AppendHeader(toRow(tbl.Header))
	}
	for _, r := range tbl.Rows {
		t.AppendRow(toRow(r))
	}
	t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// AddToWorkbook writes one sheet per section. Multi-part sections get one
// sheet per table, suffixed _1, _2, ...
func AddToWorkbook(wb *export.Workbook, a *Article) error {
	for _, s := range a.Sections {
		var err error
		switch {
		case len(s.Tables) == 1 && !s.Parts:
			err = wb.AddTable(s.Name, s.Tables[0].Header, s.Tables[0].Rows)
		case len(s.Tables) > 0:
			for i, t := range s.Tables {
				if err = wb.AddTable(export.SheetName(s.Name, i+1), t.Header, t.Rows); err != nil {
					break
				}
			}
		case s.Values != nil:
			err = wb.AddKeyValues(s.Name, s.Keys, s.Values)
		default:
			err = wb.AddText(s.Name, s.Text)
		}
		if err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	return nil
}
