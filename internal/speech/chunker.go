package speech

import (
	"strings"
	"unicode"
)

// DefaultMaxChunkLen is the longest chunk, in runes, handed to a speech
// engine in one request. Browser engines silently truncate or stall on
// long utterances well below their documented limits.
const DefaultMaxChunkLen = 220

// abbreviations that end with a period but do not end a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "ave": true, "dept": true,
	"i.e": true, "e.g": true, "etc": true, "vs": true, "inc": true,
	"ltd": true, "co": true, "corp": true, "no": true, "vol": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true, "a.m": true, "p.m": true,
	"u.s": true, "u.k": true, "u.n": true, "e.u": true,
}

// SplitChunks splits a block of text into sentence-or-line-sized pieces,
// each at most maxLen runes, safe for a speech engine with input-length
// limits. Newlines are hard boundaries; sentences are detected on
// terminal punctuation with an abbreviation guard; sentences that still
// exceed maxLen are split near their midpoint at a clause boundary.
func SplitChunks(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxChunkLen
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sentence := range splitSentences(line) {
			chunks = append(chunks, splitLong(sentence, maxLen)...)
		}
	}
	return chunks
}

// splitSentences splits one line into sentences on runs of . ! ?
// followed by whitespace, keeping closing quotes and brackets attached.
func splitSentences(line string) []string {
	runes := []rune(line)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		// Consume the full punctuation run ("?!", "...").
		end := i
		for end+1 < len(runes) && isTerminal(runes[end+1]) {
			end++
		}
		// Keep trailing closers with the sentence.
		for end+1 < len(runes) && isCloser(runes[end+1]) {
			end++
		}

		// A sentence only ends at whitespace or end of line. This keeps
		// decimals ("3.5") and domains intact.
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			i = end
			continue
		}

		// Abbreviation guard: a single period after a known short word
		// does not end the sentence.
		if runes[i] == '.' && end == i && isAbbreviation(runes[start:i]) {
			continue
		}

		s := strings.TrimSpace(string(runes[start : end+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end + 1
		i = end
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// isAbbreviation reports whether the word ending at the period is a
// known abbreviation.
func isAbbreviation(before []rune) bool {
	i := len(before)
	for i > 0 && !unicode.IsSpace(before[i-1]) {
		i--
	}
	word := strings.ToLower(string(before[i:]))
	word = strings.TrimSuffix(word, ".")
	if word == "" {
		return false
	}
	if len(word) == 1 && unicode.IsLetter([]rune(word)[0]) {
		// Single initials ("J. Smith").
		return true
	}
	return abbreviations[word]
}

// splitLong splits a sentence exceeding maxLen at the clause boundary
// nearest the midpoint, preferring commas and semicolons over spaces.
// A hard cut at maxLen is the last resort.
func splitLong(sentence string, maxLen int) []string {
	runes := []rune(sentence)
	if len(runes) <= maxLen {
		return []string{sentence}
	}

	cut := findSplit(runes, len(runes)/2)
	if cut <= 0 || cut >= len(runes) {
		cut = maxLen
	}

	head := strings.TrimSpace(string(runes[:cut]))
	tail := strings.TrimSpace(string(runes[cut:]))

	var out []string
	if head != "" {
		out = append(out, splitLong(head, maxLen)...)
	}
	if tail != "" {
		out = append(out, splitLong(tail, maxLen)...)
	}
	return out
}

// findSplit looks for the clause boundary closest to the preferred
// position, scanning a window of a quarter of the text on each side.
func findSplit(runes []rune, preferred int) int {
	window := len(runes) / 4
	lo, hi := preferred-window, preferred+window
	if lo < 1 {
		lo = 1
	}
	if hi > len(runes)-1 {
		hi = len(runes) - 1
	}

	best, bestDist := -1, len(runes)
	spaceBest, spaceDist := -1, len(runes)
	for i := lo; i <= hi; i++ {
		dist := preferred - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case runes[i] == ',' || runes[i] == ';' || runes[i] == ':':
			if dist < bestDist {
				best, bestDist = i+1, dist
			}
		case unicode.IsSpace(runes[i]):
			if dist < spaceDist {
				spaceBest, spaceDist = i, dist
			}
		}
	}
	if best > 0 {
		return best
	}
	return spaceBest
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}
