package wiki

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const statisticsHeader = "Tournament statistics"

// Parse extracts the article sections from an HTML document.
func Parse(r io.Reader) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// footnote markers and inline styles pollute cell text
	doc.Find("sup.reference, style, script").Remove()

	a := &Article{}
	infobox := doc.Find("table.infobox").First()
	if infobox.Length() > 0 {
		a.Sections = append(a.Sections, details(infobox))
	}
	a.Sections = append(a.Sections, statistics(infobox), allocation(doc))

	for _, name := range []string{SectionDistribution, SectionTeams, SectionSchedule} {
		if t, ok := tableAfter(doc, name); ok {
			a.Sections = append(a.Sections, Section{Name: name, Tables: []Table{t}})
		}
	}

	return a, nil
}

// details collects the infobox rows that have both a header and a value.
func details(infobox *goquery.Selection) Section {
	s := Section{Name: SectionDetails, Values: map[string]string{}}
	infobox.Find("tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th").First()
		td := row.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		key := cellText(th)
		if key == "" {
			return
		}
		s.set(key, cellText(td))
	})
	return s
}

// statistics parses "key: value" fragments from the row after the
// statistics header.
func statistics(infobox *goquery.Selection) Section {
	s := Section{Name: SectionStatistics, Values: map[string]string{}}

	header := infobox.Find("th").FilterFunction(func(_ int, th *goquery.Selection) bool {
		return cellText(th) == statisticsHeader
	}).First()
	if header.Length() == 0 {
		return s
	}

	next := header.Closest("tr").Next()
	if next.Find("td").Length() == 0 {
		return s
	}
	parts := textParts(next)
	for i := 0; i < len(parts); i++ {
		key, value, ok := strings.Cut(parts[i], ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		// "<b>Goals:</b> 412" splits the value into its own text node
		if value == "" && i+1 < len(parts) && !strings.Contains(parts[i+1], ":") {
			i++
			value = parts[i]
		}
		if key != "" {
			s.set(key, value)
		}
	}
	return s
}

// allocation returns every wikitable whose first row mentions "Rank".
func allocation(doc *goquery.Document) Section {
	s := Section{Name: SectionAllocation, Parts: true}
	doc.Find("table.wikitable").Each(func(_ int, tbl *goquery.Selection) {
		if strings.Contains(tbl.Find("tr").First().Text(), "Rank") {
			s.Tables = append(s.Tables, parseTable(tbl))
		}
	})
	if len(s.Tables) == 0 {
		s.Text = NoAllocationTable
	}
	return s
}

// tableAfter finds the first wikitable that follows the element with the
// given id in document order.
func tableAfter(doc *goquery.Document, id string) (Table, bool) {
	anchor := doc.Find("#" + id).First()
	if anchor.Length() == 0 {
		return Table{}, false
	}

	all := doc.Find("*")
	pos := all.IndexOfSelection(anchor)

	var found *goquery.Selection
	doc.Find("table.wikitable").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		if all.IndexOfSelection(tbl) > pos {
			found = tbl
			return false
		}
		return true
	})
	if found == nil {
		return Table{}, false
	}
	return parseTable(found), true
}

type span struct {
	text string
	left int
}

// parseTable converts a table into a header and rows. Leading rows made only
// of th cells form the header; the last one wins. Rows whose cells are all
// empty are dropped.
func parseTable(tbl *goquery.Selection) Table {
	var t Table
	carry := map[int]span{}
	inHeader := true

	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// nested tables belong to their own parent
		if tr.Closest("table").Get(0) != tbl.Get(0) {
			return
		}

		var row []string
		fill := func() {
			for {
				col := len(row)
				sp, ok := carry[col]
				if !ok {
					return
				}
				row = append(row, sp.text)
				if sp.left--; sp.left == 0 {
					delete(carry, col)
				} else {
					carry[col] = sp
				}
			}
		}

		cells := tr.ChildrenFiltered("th, td")
		allHeader := cells.Length() > 0 && cells.Length() == tr.ChildrenFiltered("th").Length()
		cells.Each(func(_ int, c *goquery.Selection) {
			fill()
			text := cellText(c)
			colspan := spanAttr(c, "colspan")
			rowspan := spanAttr(c, "rowspan")
			for k := 0; k < colspan; k++ {
				if rowspan > 1 {
					carry[len(row)] = span{text: text, left: rowspan - 1}
				}
				row = append(row, text)
			}
		})
		fill()

		if inHeader && allHeader {
			t.Header = row
			return
		}
		inHeader = false
		if !blank(row) {
			t.Rows = append(t.Rows, row)
		}
	})

	return t
}

func spanAttr(c *goquery.Selection, name string) int {
	v, ok := c.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// cellText returns the text of sel with whitespace collapsed.
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// textParts returns the non-empty text nodes under sel, trimmed, in
// document order.
func textParts(sel *goquery.Selection) []string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return parts
}
