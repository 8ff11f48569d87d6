// Package provision defines the domain model for a hierarchically
// structured legal text corpus: provision nodes addressed by path-style
// ids, yearly immutable snapshots, change records, and graph edges.
package provision

import "strings"

// Level identifies the hierarchy level of a provision.
type Level string

const (
	// LevelTitle is the top-level container in the id scheme (/t18).
	LevelTitle        Level = "title"
	LevelSection      Level = "section"
	LevelSubsection   Level = "subsection"
	LevelParagraph    Level = "paragraph"
	LevelSubparagraph Level = "subparagraph"
	LevelClause       Level = "clause"
	LevelItem         Level = "item"
)

// ChangeType classifies how a provision changed in a snapshot year.
type ChangeType string

const (
	ChangeUnchanged ChangeType = "unchanged"
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
)

// EdgeType identifies the kind of a graph edge between provisions.
type EdgeType string

const (
	// EdgeHierarchy links a provision to its parent or child in the same year.
	EdgeHierarchy EdgeType = "hierarchy"
	// EdgeReference links two provisions that cross-reference each other
	// in the same year. Reference edges can be mutual or circular.
	EdgeReference EdgeType = "reference"
	// EdgeAmendment links provisions across snapshot years (version lineage).
	EdgeAmendment EdgeType = "amendment"
)

// Row is the flat storage representation of one provision in one year.
// Text is empty for pure container rows.
type Row struct {
	ID      string `json:"id"`
	Year    int    `json:"year"`
	Level   Level  `json:"level"`
	Num     string `json:"num"`
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Node is a provision in the in-memory tree for one snapshot year.
// Children are ordered and owned exclusively by their parent; parent
// lookup goes through ParentID on the id string, never a back-pointer.
type Node struct {
	ID       string  `json:"id"`
	Year     int     `json:"year"`
	Level    Level   `json:"level"`
	Num      string  `json:"num"`
	Heading  string  `json:"heading,omitempty"`
	Text     string  `json:"text,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// ChangeRecord describes one provision's change in one snapshot year.
// TextDelta is the signed character-count delta against the prior
// existing year.
type ChangeRecord struct {
	ID        string     `json:"id"`
	Year      int        `json:"year"`
	Type      ChangeType `json:"changeType"`
	Magnitude float64    `json:"magnitude"`
	TextDelta int        `json:"textDelta"`
}

// Edge is a graph edge between two provisions. Hierarchy and reference
// edges stay within one snapshot year (FromYear == ToYear); amendment
// edges cross the year boundary.
type Edge struct {
	From     string   `json:"from"`
	FromYear int      `json:"fromYear"`
	To       string   `json:"to"`
	ToYear   int      `json:"toYear"`
	Type     EdgeType `json:"type"`
}

// Other returns the endpoint of e opposite to (id, year). The second
// return is false when (id, year) is not an endpoint of e.
func (e Edge) Other(id string, year int) (string, int, bool) {
	if e.From == id && e.FromYear == year {
		return e.To, e.ToYear, true
	}
	if e.To == id && e.ToYear == year {
		return e.From, e.FromYear, true
	}
	return "", 0, false
}

// ParentID returns the id of the enclosing provision, or "" for a
// top-level id. The parent of "/t18/s922/a" is "/t18/s922".
func ParentID(id string) string {
	idx := strings.LastIndex(id, "/")
	if idx <= 0 {
		return ""
	}
	return id[:idx]
}

// Depth returns the number of path segments in id.
func Depth(id string) int {
	if id == "" {
		return 0
	}
	return strings.Count(id, "/")
}

// IsChildOf reports whether child is exactly one segment below parent.
func IsChildOf(child, parent string) bool {
	return ParentID(child) == parent
}

// IsDescendantOf reports whether id lies anywhere under root, or equals it.
func IsDescendantOf(id, root string) bool {
	return id == root || strings.HasPrefix(id, root+"/")
}
