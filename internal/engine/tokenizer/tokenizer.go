// Package tokenizer produces the character-bigram tokens used as indexing
// units for substring matching. Tokens are built from Unicode code points,
// never raw bytes, so multi-byte characters are kept intact.
package tokenizer

// Bigrams returns every overlapping two-character substring of text in
// left-to-right order, followed by the full text itself so that exact and
// substring lookups share one index. A single-character input yields just
// that character; an empty input yields nil.
func Bigrams(text string) []string {
	runes := []rune(text)
	switch len(runes) {
	case 0:
		return nil
	case 1:
		return []string{text}
	}
	tokens := make([]string, 0, len(runes))
	for i := 0; i < len(runes)-1; i++ {
		tokens = append(tokens, string(runes[i:i+2]))
	}
	return append(tokens, text)
}

// RuneLen returns the number of code points in s.
func RuneLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
