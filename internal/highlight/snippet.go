package highlight

import "strings"

// Ellipsis marks a snippet window that does not reach a text boundary.
const Ellipsis = "..."

// DefaultSnippetLength is used when ExtractSnippet receives maxLength <= 0.
const DefaultSnippetLength = 150

// Snippet is a context window around the first matched term.
type Snippet struct {
	Text         string
	WasTruncated bool
	MatchFound   bool
}

// ExtractSnippet centers a window of maxLength characters around the
// earliest occurrence of any term. Without a match the window starts at
// the beginning of the text. Windows that stop short of a text boundary
// gain an ellipsis on that side.
func ExtractSnippet(text string, terms []string, maxLength int) Snippet {
	if maxLength <= 0 {
		maxLength = DefaultSnippetLength
	}

	runes := []rune(text)
	matchAt, matchLen := earliestMatch(text, terms)

	if len(runes) <= maxLength {
		return Snippet{
			Text:         text,
			WasTruncated: false,
			MatchFound:   matchAt >= 0,
		}
	}

	start := 0
	if matchAt >= 0 {
		// Center the window on the middle of the matched term.
		start = matchAt + matchLen/2 - maxLength/2
	}
	if start < 0 {
		start = 0
	}
	if start > len(runes)-maxLength {
		start = len(runes) - maxLength
	}
	end := start + maxLength

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = Ellipsis + snippet
	}
	if end < len(runes) {
		snippet += Ellipsis
	}

	return Snippet{
		Text:         snippet,
		WasTruncated: true,
		MatchFound:   matchAt >= 0,
	}
}

// earliestMatch returns the rune offset and rune length of the earliest
// case-insensitive occurrence of any term, or (-1, 0).
func earliestMatch(text string, terms []string) (int, int) {
	lowerText := strings.ToLower(text)

	best := -1
	bestLen := 0
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		idx := strings.Index(lowerText, strings.ToLower(term))
		if idx < 0 {
			continue
		}
		runeIdx := len([]rune(lowerText[:idx]))
		if best == -1 || runeIdx < best {
			best = runeIdx
			bestLen = len([]rune(term))
		}
	}
	return best, bestLen
}
