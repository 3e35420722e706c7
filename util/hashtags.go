package util

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// hashtagPattern matches '#' followed by word characters. Go's RE2 has no
// lookbehind, so the preceding character is checked in ExtractHashtags.
var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{M}\p{Nd}_]+)`)

const (
	MinTagLength = 1
	MaxTagLength = 30
)

// ExtractHashtags returns the lower-cased, de-duplicated, sorted hashtags of text.
// A '#' directly preceded by a word character does not start a tag.
func ExtractHashtags(text string) []string {
	if text == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, loc := range hashtagPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
			if isWordRune(prev) {
				continue
			}
		}
		seen[strings.ToLower(text[loc[2]:loc[3]])] = struct{}{}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// NormalizeTag turns user supplied tag input into its stored form. It returns
// "" when nothing valid remains or the result is longer than MaxTagLength.
func NormalizeTag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.TrimLeft(tag, "#")
	tag = strings.ToLower(tag)
	tag = strings.Join(strings.Fields(tag), "-")

	var b strings.Builder
	for _, r := range tag {
		if isTagRune(r) {
			b.WriteRune(r)
		}
	}
	tag = b.String()

	n := utf8.RuneCountInString(tag)
	if n < MinTagLength || n > MaxTagLength {
		return ""
	}
	return tag
}

// NormalizeTags normalizes each tag, dropping invalid ones and duplicates
// while keeping input order.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		tag := NormalizeTag(r)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// isTagRune allows ASCII letters and digits, '_', '-' and Hangul.
func isTagRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r == '_' || r == '-':
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r >= 0x3131 && r <= 0x318E: // Hangul compatibility jamo
		return true
	}
	return false
}
