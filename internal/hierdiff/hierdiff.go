// Package hierdiff matches two provision trees from different snapshot
// years and classifies every node in the union of the two hierarchies.
//
// Nodes are paired strictly by id string. A provision renumbered from
// (3) to (4) therefore surfaces as a remove plus an add, never a rename.
// A node's own status reflects only its own text; callers walk Children
// to detect nested modification.
package hierdiff

import (
	"context"
	"strings"

	"lexver/internal/inlinediff"
	"lexver/internal/provision"
)

// Status classifies one node of the diff tree.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
)

// DiffNode mirrors the union of old-tree and new-tree nodes in document
// order: new-tree child order where a child exists in the new year,
// old-only children appended in old-tree order.
type DiffNode struct {
	ID         string                                      `json:"id"`
	Level      provision.Level                             `json:"level"`
	Num        string                                      `json:"num"`
	Heading    string                                      `json:"heading,omitempty"`
	Status     Status                                      `json:"status"`
	OldText    *string                                     `json:"oldText"`
	NewText    *string                                     `json:"newText"`
	InlineDiff map[inlinediff.Granularity][]inlinediff.Segment `json:"inlineDiff,omitempty"`
	Children   []*DiffNode                                 `json:"children,omitempty"`
}

// Options configures a hierarchy diff.
type Options struct {
	// Granularity selects the tokenization for inline diffs on modified
	// leaves. Defaults to word.
	Granularity inlinediff.Granularity
}

// Diff recursively compares the trees rooted at oldRoot and newRoot.
// Either root may be nil (the whole subtree was added or removed), but
// not both. Cancellation is checked at every recursive call; a cancelled
// diff returns ctx.Err() with no partial result.
func Diff(ctx context.Context, oldRoot, newRoot *provision.Node, opts Options) (*DiffNode, error) {
	if opts.Granularity == "" {
		opts.Granularity = inlinediff.GranularityWord
	}
	return diffPair(ctx, oldRoot, newRoot, opts)
}

func diffPair(ctx context.Context, oldNode, newNode *provision.Node, opts Options) (*DiffNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if oldNode == nil && newNode == nil {
		return nil, nil
	}

	node := &DiffNode{}
	switch {
	case oldNode == nil:
		node.ID = newNode.ID
		node.Level = newNode.Level
		node.Num = newNode.Num
		node.Heading = newNode.Heading
		node.Status = StatusAdded
		if newNode.Text != "" {
			node.NewText = strptr(newNode.Text)
		}
	case newNode == nil:
		node.ID = oldNode.ID
		node.Level = oldNode.Level
		node.Num = oldNode.Num
		node.Heading = oldNode.Heading
		node.Status = StatusRemoved
		if oldNode.Text != "" {
			node.OldText = strptr(oldNode.Text)
		}
	default:
		// Present in both years: display metadata follows the new tree.
		node.ID = newNode.ID
		node.Level = newNode.Level
		node.Num = newNode.Num
		node.Heading = newNode.Heading
		if oldNode.Text != "" {
			node.OldText = strptr(oldNode.Text)
		}
		if newNode.Text != "" {
			node.NewText = strptr(newNode.Text)
		}
		if textEqual(oldNode.Text, newNode.Text) {
			node.Status = StatusUnchanged
		} else {
			node.Status = StatusModified
			if oldNode.Text != "" && newNode.Text != "" {
				node.InlineDiff = map[inlinediff.Granularity][]inlinediff.Segment{
					opts.Granularity: inlinediff.Diff(oldNode.Text, newNode.Text, opts.Granularity),
				}
			}
		}
	}

	oldKids := childIndex(oldNode)
	newKids := childIndex(newNode)

	// Union of child ids: new-tree order first, then old-only ids in
	// old-tree order.
	for _, pair := range pairChildren(oldNode, newNode) {
		child, err := diffPair(ctx, oldKids[pair], newKids[pair], opts)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

func pairChildren(oldNode, newNode *provision.Node) []string {
	seen := make(map[string]bool)
	var ids []string
	if newNode != nil {
		for _, c := range newNode.Children {
			if !seen[c.ID] {
				seen[c.ID] = true
				ids = append(ids, c.ID)
			}
		}
	}
	if oldNode != nil {
		for _, c := range oldNode.Children {
			if !seen[c.ID] {
				seen[c.ID] = true
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

func childIndex(n *provision.Node) map[string]*provision.Node {
	if n == nil {
		return nil
	}
	idx := make(map[string]*provision.Node, len(n.Children))
	for _, c := range n.Children {
		idx[c.ID] = c
	}
	return idx
}

// textEqual compares provision text trimmed of surrounding whitespace,
// case preserved.
func textEqual(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

func strptr(s string) *string {
	return &s
}
