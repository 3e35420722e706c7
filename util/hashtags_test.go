package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"no tags", "just text", []string{}},
		{"single", "hello #world", []string{"world"}},
		{"lower-cased and sorted", "#Zeta and #alpha", []string{"alpha", "zeta"}},
		{"deduplicated", "#go #Go #GO", []string{"go"}},
		{"digits and underscore", "#go_1 #2024", []string{"2024", "go_1"}},
		{"hangul", "오늘도 코딩! #파이썬 #python", []string{"python", "파이썬"}},
		{"preceded by word char", "mail#notatag and a#b", []string{}},
		{"adjacent tags", "#one#two", []string{"one"}},
		{"punctuation stops tag", "(#tag), #end.", []string{"end", "tag"}},
		{"lonely hash", "# nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.text))
		})
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "golang", "golang"},
		{"strips hash", "#GoLang", "golang"},
		{"whitespace to hyphen", "  new   year ", "new-year"},
		{"drops punctuation", "c++!", "c"},
		{"keeps hangul", "#새해 복", "새해-복"},
		{"empty after cleanup", "#!!!", ""},
		{"too long", strings.Repeat("a", 31), ""},
		{"max length", strings.Repeat("a", 30), strings.Repeat("a", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTag(tt.raw))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"#Go", "go", "!!", "Rust Lang", ""})
	assert.Equal(t, []string{"go", "rust-lang"}, got)
}
