// Package wiki extracts the infobox and data tables of a Wikipedia
// tournament article.
package wiki

// Section names, in extraction order.
const (
	SectionDetails      = "Tournament Details"
	SectionStatistics   = "Tournament Statistics"
	SectionAllocation   = "Association Allocation"
	SectionDistribution = "Distribution"
	SectionTeams        = "Teams"
	SectionSchedule     = "Schedule"
)

// NoAllocationTable is the text of the allocation section when the article
// has no ranking table.
const NoAllocationTable = "No allocation table found."

// Table is a parsed HTML table. Cells spanning several columns or rows are
// repeated into every position they cover.
type Table struct {
	Header []string
	Rows   [][]string
}

// Section is one named part of an article. Exactly one of the content
// fields is set: key/value pairs, tables, or text.
type Section struct {
	Name string

	// Keys preserves the order of Values.
	Keys   []string
	Values map[string]string

	Tables []Table

	// Parts marks a section whose tables are numbered parts of one
	// collection, even when there is only one.
	Parts bool

	Text string
}

// set adds or overwrites a key, keeping its first position.
func (s *Section) set(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}
	if _, ok := s.Values[key]; !ok {
		s.Keys = append(s.Keys, key)
	}
	s.Values[key] = value
}

// Article is the extracted content of one page.
type Article struct {
	URL      string
	Sections []Section
}

// Section returns the section with the given name.
func (a *Article) Section(name string) (Section, bool) {
	for _, s := range a.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
