// Package inlinediff computes token-level diffs between two versions of
// provision text. Tokens carry their trailing separators so that the
// segments of a diff always re-concatenate to the exact input strings:
// dropping the added segments reproduces the old text, dropping the
// removed segments reproduces the new text.
package inlinediff

import "unicode"

// Granularity selects the tokenization unit.
type Granularity string

const (
	GranularityWord     Granularity = "word"
	GranularitySentence Granularity = "sentence"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == GranularityWord || g == GranularitySentence
}

// SegmentType classifies a diff segment.
type SegmentType string

const (
	SegmentUnchanged SegmentType = "unchanged"
	SegmentAdded     SegmentType = "added"
	SegmentRemoved   SegmentType = "removed"
)

// Segment is a run of text with a single diff classification. Adjacent
// same-type operations are coalesced, so consecutive segments always
// differ in type.
type Segment struct {
	Type SegmentType `json:"type"`
	Text string      `json:"text"`
}

// Diff aligns oldText and newText at the given granularity and returns
// the coalesced edit script. Equal inputs yield a single unchanged
// segment spanning the whole text; two empty inputs yield nil.
func Diff(oldText, newText string, g Granularity) []Segment {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Segment{{Type: SegmentUnchanged, Text: oldText}}
	}

	oldToks := Tokenize(oldText, g)
	newToks := Tokenize(newText, g)
	return coalesce(align(oldToks, newToks))
}

// Tokenize splits text into granularity units. Word tokens keep trailing
// whitespace attached to the preceding word; sentence tokens keep their
// terminal punctuation and the whitespace that follows it.
func Tokenize(text string, g Granularity) []string {
	if text == "" {
		return nil
	}
	if g == GranularitySentence {
		return splitSentences(text)
	}
	return splitWords(text)
}

// splitWords cuts at every whitespace-to-non-whitespace boundary. A run
// of leading whitespace becomes its own token; everywhere else the
// whitespace travels with the word before it.
func splitWords(text string) []string {
	var toks []string
	start := 0
	inSpace := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && i > start {
			toks = append(toks, text[start:i])
			start = i
		}
		inSpace = false
	}
	if start < len(text) {
		toks = append(toks, text[start:])
	}
	return toks
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// splitSentences ends a sentence after a run of terminal punctuation that
// is followed by whitespace (or the end of the text). The punctuation and
// the following whitespace stay with the sentence they close, so a "3.5"
// mid-sentence never cuts.
func splitSentences(text string) []string {
	var toks []string
	start := 0
	i := 0
	for i < len(text) {
		if !isTerminal(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		k := j
		for k < len(text) && isASCIISpace(text[k]) {
			k++
		}
		if k > j || j == len(text) {
			toks = append(toks, text[start:k])
			start = k
		}
		i = k
		if i == j {
			i = j + 1
		}
	}
	if start < len(text) {
		toks = append(toks, text[start:])
	}
	return toks
}

type opType int

const (
	opEqual opType = iota
	opDelete
	opInsert
)

type op struct {
	typ  opType
	text string
}

// align computes a longest-common-subsequence alignment over the two
// token sequences and emits the edit script in old-before-new order
// (removals before insertions at each divergence point). Quadratic in
// the token counts, which is acceptable for bounded provision text.
func align(oldToks, newToks []string) []op {
	n, m := len(oldToks), len(newToks)

	// lcs[i][j] = LCS length of oldToks[i:] and newToks[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldToks[i] == newToks[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	ops := make([]op, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldToks[i] == newToks[j]:
			ops = append(ops, op{opEqual, oldToks[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, op{opDelete, oldToks[i]})
			i++
		default:
			ops = append(ops, op{opInsert, newToks[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, op{opDelete, oldToks[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, op{opInsert, newToks[j]})
	}
	return ops
}

func segmentType(t opType) SegmentType {
	switch t {
	case opDelete:
		return SegmentRemoved
	case opInsert:
		return SegmentAdded
	default:
		return SegmentUnchanged
	}
}

func coalesce(ops []op) []Segment {
	var segs []Segment
	for _, o := range ops {
		st := segmentType(o.typ)
		if len(segs) > 0 && segs[len(segs)-1].Type == st {
			segs[len(segs)-1].Text += o.text
			continue
		}
		segs = append(segs, Segment{Type: st, Text: o.text})
	}
	return segs
}

// Reconstruct concatenates all segments except those of the excluded
// type. Excluding added segments reproduces the old text; excluding
// removed segments reproduces the new text.
func Reconstruct(segs []Segment, exclude SegmentType) string {
	var out []byte
	for _, s := range segs {
		if s.Type == exclude {
			continue
		}
		out = append(out, s.Text...)
	}
	return string(out)
}
