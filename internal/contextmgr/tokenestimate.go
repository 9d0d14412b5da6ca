package contextmgr

import "unicode/utf8"

// EstimateTokens approximates a message's token cost when the active
// provider does not report usage for a not-yet-sent request.
//
// Standard-library exception: none of the example repositories or
// other_examples/ manifests import a tokenizer (no tiktoken-go,
// no sentencepiece binding, nothing under a BPE/cl100k name). Rather
// than fabricate a dependency the corpus never reaches for, this
// follows the teacher's own entirely-heuristic approach (compaction.go
// triggers purely off provider-reported Usage.InputTokens, never a
// local estimate) and applies the conservative cl100k-ish rule spec
// §4.6 names directly: roughly 4 characters per token, inflated by 1.15x
// for headroom when a provider's own count is unavailable.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	estimate := float64(n) / 4.0 * 1.15
	if estimate < 1 && n > 0 {
		return 1
	}
	return int(estimate)
}
