package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"lexver/internal/engine"
	"lexver/internal/hierdiff"
	"lexver/internal/inlinediff"
	"lexver/internal/provision"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *engine.CompareResult:
		return formatCompareHuman(v), nil
	case *engine.RadiusResult:
		return formatRadiusHuman(v), nil
	case *engine.ConstellationResult:
		return formatConstellationHuman(v), nil
	case *engine.SummaryResult:
		return formatSummaryHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

var statusMarker = map[hierdiff.Status]string{
	hierdiff.StatusUnchanged: " ",
	hierdiff.StatusModified:  "~",
	hierdiff.StatusAdded:     "+",
	hierdiff.StatusRemoved:   "-",
}

func formatCompareHuman(resp *engine.CompareResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Compare %s: %d -> %d (%s granularity)\n\n",
		resp.RootID, resp.YearOld, resp.YearNew, resp.Granularity)
	writeDiffNode(&b, resp.Root, 0, resp.Granularity)
	fmt.Fprintf(&b, "\nRequest %s (%dms)\n", resp.Provenance.RequestID, resp.Provenance.DurationMs)
	return b.String()
}

func writeDiffNode(b *strings.Builder, node *hierdiff.DiffNode, depth int, g inlinediff.Granularity) {
	indent := strings.Repeat("  ", depth)
	label := node.Num
	if node.Heading != "" {
		label += " " + node.Heading
	}
	fmt.Fprintf(b, "%s%s %s (%s)\n", indent, statusMarker[node.Status], node.ID, strings.TrimSpace(label))

	if node.Status == hierdiff.StatusModified {
		for _, seg := range node.InlineDiff[g] {
			switch seg.Type {
			case inlinediff.SegmentAdded:
				fmt.Fprintf(b, "%s    ++ %q\n", indent, seg.Text)
			case inlinediff.SegmentRemoved:
				fmt.Fprintf(b, "%s    -- %q\n", indent, seg.Text)
			}
		}
	}

	for _, child := range node.Children {
		writeDiffNode(b, child, depth+1, g)
	}
}

func formatRadiusHuman(resp *engine.RadiusResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Impact radius of %s in %d (depth %d)\n\n", resp.SeedID, resp.Year, resp.Depth)
	for _, n := range resp.Radius.Nodes {
		fmt.Fprintf(&b, "  [%d] %s (%s)", n.Distance, n.ID, n.ChangeType)
		if n.TextDelta != 0 {
			fmt.Fprintf(&b, " delta %+d", n.TextDelta)
		}
		fmt.Fprintln(&b)
	}

	stats := resp.Radius.Stats
	fmt.Fprintf(&b, "\n%d nodes, %d edges, max depth %d\n",
		stats.TotalNodes, len(resp.Radius.Edges), stats.MaxDepthReached)
	if resp.Radius.Incomplete {
		fmt.Fprintln(&b, "WARNING: traversal cancelled before completion; results are partial")
	}
	fmt.Fprintf(&b, "Request %s (%dms)\n", resp.Provenance.RequestID, resp.Provenance.DurationMs)
	return b.String()
}

func formatConstellationHuman(resp *engine.ConstellationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Change constellations %d..%d\n\n", resp.YearStart, resp.YearEnd)
	if len(resp.Constellation.Clusters) == 0 {
		fmt.Fprintln(&b, "  (no changes in scope)")
	}
	for _, c := range resp.Constellation.Clusters {
		fmt.Fprintf(&b, "  %d %s (%d members)\n", c.Year, c.ParentID, c.Count)
		for _, id := range c.MemberIDs {
			fmt.Fprintf(&b, "    - %s\n", id)
		}
	}
	fmt.Fprintf(&b, "\nRequest %s (%dms)\n", resp.Provenance.RequestID, resp.Provenance.DurationMs)
	return b.String()
}

func formatSummaryHuman(resp *engine.SummaryResult) string {
	var b strings.Builder

	scope := resp.ScopeID
	if scope == "" {
		scope = "entire corpus"
	}
	fmt.Fprintf(&b, "Change summary %d..%d for %s\n\n", resp.YearStart, resp.YearEnd, scope)
	if len(resp.Years) == 0 {
		fmt.Fprintln(&b, "  (no changes recorded)")
	}
	for _, y := range resp.Years {
		fmt.Fprintf(&b, "  %d: %d changes (net %+d chars)", y.Year, y.TotalChanges, y.NetTextDelta)
		var parts []string
		for _, t := range []string{"added", "modified", "removed"} {
			if n := y.ByChangeType[provision.ChangeType(t)]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, t))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(parts, ", "))
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "\nRequest %s (%dms)\n", resp.Provenance.RequestID, resp.Provenance.DurationMs)
	return b.String()
}
