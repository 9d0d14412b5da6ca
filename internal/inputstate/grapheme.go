package inputstate

import "github.com/rivo/uniseg"

// graphemeCount returns the number of grapheme clusters in s, so emoji
// and composed scripts count as one cursor position each.
func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// graphemeIndexToByte converts a grapheme-cluster index into a byte
// offset into s. An index past the last cluster returns len(s).
func graphemeIndexToByte(s string, idx int) int {
	if idx <= 0 {
		return 0
	}
	bytePos := 0
	g := uniseg.NewGraphemes(s)
	for i := 0; g.Next(); i++ {
		if i == idx {
			return bytePos
		}
		bytePos += len(g.Str())
	}
	return len(s)
}

// insertAtGrapheme inserts text at grapheme index idx, never splitting
// a cluster.
func insertAtGrapheme(s string, idx int, text string) string {
	b := graphemeIndexToByte(s, idx)
	return s[:b] + text + s[b:]
}

// deleteGraphemeBefore removes the cluster immediately before idx,
// returning the new string and cursor position. A no-op at idx 0.
func deleteGraphemeBefore(s string, idx int) (string, int) {
	if idx <= 0 {
		return s, 0
	}
	start := graphemeIndexToByte(s, idx-1)
	end := graphemeIndexToByte(s, idx)
	return s[:start] + s[end:], idx - 1
}

// deleteGraphemeAt removes the cluster at idx (forward delete),
// returning the new string; cursor position is unchanged.
func deleteGraphemeAt(s string, idx int) string {
	total := graphemeCount(s)
	if idx < 0 || idx >= total {
		return s
	}
	start := graphemeIndexToByte(s, idx)
	end := graphemeIndexToByte(s, idx+1)
	return s[:start] + s[end:]
}
