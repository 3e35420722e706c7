package feed

import (
	"html"
	"slices"
	"sort"
	"strings"
	"unicode"
)

// Highlight HTML-escapes text and wraps every case-insensitive occurrence of
// each whitespace separated query token in <mark>. Overlapping and adjacent
// matches collapse into one mark.
func Highlight(text, query string) string {
	if text == "" {
		return ""
	}
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return html.EscapeString(text)
	}

	runes := []rune(text)
	folded := make([]rune, len(runes))
	for i, r := range runes {
		folded[i] = unicode.ToLower(r)
	}

	var spans [][2]int
	for _, tok := range tokens {
		for start := 0; start+len(tok) <= len(folded); start++ {
			if slices.Equal(folded[start:start+len(tok)], tok) {
				spans = append(spans, [2]int{start, start + len(tok)})
			}
		}
	}
	if len(spans) == 0 {
		return html.EscapeString(text)
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s[0] <= last[1] {
			last[1] = max(last[1], s[1])
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	pos := 0
	for _, s := range merged {
		b.WriteString(html.EscapeString(string(runes[pos:s[0]])))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(string(runes[s[0]:s[1]])))
		b.WriteString("</mark>")
		pos = s[1]
	}
	b.WriteString(html.EscapeString(string(runes[pos:])))
	return b.String()
}

// queryTokens returns the distinct lower-cased tokens, longest first.
func queryTokens(query string) [][]rune {
	seen := make(map[string]struct{})
	var tokens [][]rune
	for _, f := range strings.Fields(query) {
		tok := []rune(f)
		for i, r := range tok {
			tok[i] = unicode.ToLower(r)
		}
		if _, ok := seen[string(tok)]; ok {
			continue
		}
		seen[string(tok)] = struct{}{}
		tokens = append(tokens, tok)
	}
	sort.SliceStable(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	return tokens
}
