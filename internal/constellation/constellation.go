// Package constellation groups per-year change records into clusters of
// provisions changed together under the same enclosing parent — the
// working presumption being that same-year, same-parent changes share a
// legislative origin.
//
// The grouping is purely structural and deterministic: identical inputs
// always produce identical clusters, independent of record order.
package constellation

import (
	"sort"
	"strconv"
	"strings"

	"lexver/internal/provision"
)

// Options filter the change records considered for clustering.
type Options struct {
	// ScopeID restricts records to one provision subtree (prefix match).
	ScopeID string
	// SectionNum restricts records to ids containing the section segment
	// ("922" matches "/t18/s922/a" but not "/t18/s9221").
	SectionNum string
	// YearStart..YearEnd is the inclusive year range.
	YearStart int
	YearEnd   int
	// ChangeTypes, when non-empty, keeps only records of these types.
	ChangeTypes []provision.ChangeType
	// MinMagnitude drops records below the threshold.
	MinMagnitude float64
}

// Cluster is one group of same-year changes under one parent.
type Cluster struct {
	Year      int      `json:"year"`
	ParentID  string   `json:"parentId"`
	MemberIDs []string `json:"memberIds"`
	Count     int      `json:"count"`
}

// Node is one provision in the flattened graph view.
type Node struct {
	ID         string               `json:"id"`
	Year       int                  `json:"year"`
	ChangeType provision.ChangeType `json:"changeType"`
	Magnitude  float64              `json:"magnitude"`
	TextDelta  int                  `json:"textDelta"`
}

// Edge links an enclosing parent to a changed member provision.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Year int    `json:"year"`
}

// Result carries the cluster summaries plus flattened node/edge views.
type Result struct {
	Clusters []Cluster `json:"clusters"`
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
}

// Build filters records per opts and groups the survivors by
// (year, immediate parent id). Output ordering is fully determined by
// the input set: clusters by year then parent id, members by id.
func Build(records []provision.ChangeRecord, opts Options) *Result {
	allowed := make(map[provision.ChangeType]bool, len(opts.ChangeTypes))
	for _, t := range opts.ChangeTypes {
		allowed[t] = true
	}

	type groupKey struct {
		year     int
		parentID string
	}
	groups := make(map[groupKey][]provision.ChangeRecord)

	for _, rec := range records {
		if rec.Year < opts.YearStart || rec.Year > opts.YearEnd {
			continue
		}
		if opts.ScopeID != "" && !provision.IsDescendantOf(rec.ID, opts.ScopeID) {
			continue
		}
		if opts.SectionNum != "" && !hasSectionSegment(rec.ID, opts.SectionNum) {
			continue
		}
		if len(allowed) > 0 && !allowed[rec.Type] {
			continue
		}
		if rec.Magnitude < opts.MinMagnitude {
			continue
		}
		key := groupKey{rec.Year, provision.ParentID(rec.ID)}
		groups[key] = append(groups[key], rec)
	}

	result := &Result{}
	memberSeen := make(map[string]bool)

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].parentID < keys[j].parentID
	})

	for _, key := range keys {
		members := groups[key]
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

		cluster := Cluster{
			Year:     key.year,
			ParentID: key.parentID,
			Count:    len(members),
		}
		for _, rec := range members {
			cluster.MemberIDs = append(cluster.MemberIDs, rec.ID)
			result.Nodes = append(result.Nodes, Node{
				ID:         rec.ID,
				Year:       rec.Year,
				ChangeType: rec.Type,
				Magnitude:  rec.Magnitude,
				TextDelta:  rec.TextDelta,
			})
			memberSeen[nodeKey(rec.ID, rec.Year)] = true
			result.Edges = append(result.Edges, Edge{
				From: key.parentID,
				To:   rec.ID,
				Year: key.year,
			})
		}
		result.Clusters = append(result.Clusters, cluster)
	}

	// Parent anchors that are not themselves changed members, so the
	// edge list never points at a node missing from the node view.
	for _, c := range result.Clusters {
		if c.ParentID == "" || memberSeen[nodeKey(c.ParentID, c.Year)] {
			continue
		}
		memberSeen[nodeKey(c.ParentID, c.Year)] = true
		result.Nodes = append(result.Nodes, Node{
			ID:         c.ParentID,
			Year:       c.Year,
			ChangeType: provision.ChangeUnchanged,
		})
	}

	sort.Slice(result.Nodes, func(i, j int) bool {
		if result.Nodes[i].Year != result.Nodes[j].Year {
			return result.Nodes[i].Year < result.Nodes[j].Year
		}
		return result.Nodes[i].ID < result.Nodes[j].ID
	})

	return result
}

func nodeKey(id string, year int) string {
	return id + "@" + strconv.Itoa(year)
}

func hasSectionSegment(id, num string) bool {
	want := "s" + num
	for _, seg := range strings.Split(id, "/") {
		if seg == want {
			return true
		}
	}
	return false
}
