package provision

import (
	"errors"
	"fmt"
)

// ErrRootNotFound is returned by BuildTree when the requested root id is
// absent from the row set. Absence is distinct from "exists as a textless
// container": a container row still produces a node.
var ErrRootNotFound = errors.New("root provision not found")

// BuildTree assembles the ordered row list for one snapshot year into a
// rooted tree. Rows are expected in document order (the store fetches them
// ordered by id); child order follows row order.
//
// Linking is a two-pass pass over an id -> node map: first materialize all
// nodes, then attach each node to the node named by trimming the last
// path segment of its id. Rows outside the root's subtree are ignored.
func BuildTree(rootID string, rows []Row) (*Node, error) {
	if rootID == "" {
		return nil, fmt.Errorf("build tree: empty root id")
	}

	nodes := make(map[string]*Node, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		if !IsDescendantOf(row.ID, rootID) {
			continue
		}
		if _, dup := nodes[row.ID]; dup {
			return nil, fmt.Errorf("build tree: duplicate id %q in year %d", row.ID, row.Year)
		}
		nodes[row.ID] = &Node{
			ID:      row.ID,
			Year:    row.Year,
			Level:   row.Level,
			Num:     row.Num,
			Heading: row.Heading,
			Text:    row.Text,
		}
		order = append(order, row.ID)
	}

	root, ok := nodes[rootID]
	if !ok {
		return nil, fmt.Errorf("build tree: %w: %s", ErrRootNotFound, rootID)
	}

	for _, id := range order {
		if id == rootID {
			continue
		}
		parent, ok := nodes[ParentID(id)]
		if !ok {
			// Orphan row (gap in the hierarchy). The invariant says children
			// are exactly the rows one segment below their parent, so a row
			// without its parent cannot be linked and is dropped.
			continue
		}
		parent.Children = append(parent.Children, nodes[id])
	}

	return root, nil
}

// CountNodes returns the number of nodes in the subtree rooted at n.
func CountNodes(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += CountNodes(c)
	}
	return total
}
