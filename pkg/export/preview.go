package export

import (
	"io"

	"github.com/Sternrassler/reddit-harvest/pkg/listing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultPreviewRows is the number of records Preview prints.
const DefaultPreviewRows = 5

// previewColumns are the Columns shown in the console preview.
var previewColumns = []string{
	listing.FieldID,
	listing.FieldTitle,
	listing.FieldAuthor,
	listing.FieldScore,
	listing.FieldNumComments,
	listing.FieldCreated,
}

const previewTitleWidth = 60

// NewTable returns a console table in the shared style.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// Preview prints the first n records (DefaultPreviewRows if n <= 0) as a
// table with a total footer.
func Preview(w io.Writer, records []listing.Record, n int) {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	shown := records
	if len(shown) > n {
		shown = shown[:n]
	}

	t := NewTable(w)
	header := make(table.Row, len(previewColumns))
	for i, c := range previewColumns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range shown {
		cells := Cells(r)
		t.AppendRow(table.Row{
			cells[0],
			text.Trim(cells[1], previewTitleWidth),
			cells[2],
			cells[3],
			cells[4],
			cells[5],
		})
	}
	t.AppendFooter(table.Row{"total", len(records)})
	t.Render()
}
