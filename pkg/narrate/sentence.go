package narrate

import "unicode"

// isTerminator reports whether r ends a sentence unit.
func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// SplitSentences splits text into sentence units at terminator punctuation
// ('.', '!', '?', '…'). A run of terminators counts as one boundary, and
// trailing whitespace attaches to the preceding unit. A non-terminated
// trailing fragment becomes a final unit of its own.
func SplitSentences(text string) []string {
	var (
		units []string
		runes = []rune(text)
		start = 0
		i     = 0
	)
	for i < len(runes) {
		if !isTerminator(runes[i]) {
			i++
			continue
		}
		// Consume the terminator run, then any trailing whitespace.
		for i < len(runes) && isTerminator(runes[i]) {
			i++
		}
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		units = append(units, string(runes[start:i]))
		start = i
	}
	if start < len(runes) {
		units = append(units, string(runes[start:]))
	}
	return units
}
