package util

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

//go:embed version.txt
var embeddedVersion string

// KST is the fixed UTC+9 zone every stored timestamp is written in.
var KST = time.FixedZone("KST", 9*60*60)

// TimestampLayout is fixed width so that stored timestamps sort as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

func LogSession(s ssh.Session) {
	log.Printf("%s@%s opened a new ssh-session..", s.User(), s.RemoteAddr())
}

func GetVersion() string {
	return strings.TrimSpace(embeddedVersion)
}

func GetNameAndVersion() string {
	return fmt.Sprintf("%s / %s", Name, GetVersion())
}

// Now returns the current time in KST.
func Now() time.Time {
	return time.Now().In(KST)
}

// FormatTimestamp renders t in KST using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.In(KST).Format(TimestampLayout)
}

// ParseTimestamp parses any RFC 3339 timestamp. Unparsable input yields the
// Unix epoch so that such rows sort as oldest.
func ParseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Unix(0, 0).In(KST)
	}
	return t.In(KST)
}

// NormalizeInput unifies line endings and trims surrounding whitespace.
func NormalizeInput(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(normalized)
}

// Preview returns at most n runes of s.
func Preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return Preview(s, maxLen)
	}
	return Preview(s, maxLen-3) + "..."
}

func DateTimeFormat() string {
	return "2006-01-02 15:04:05 KST"
}

func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", " ")
	return string(s)
}

// FormatMetadata renders activity metadata as compact JSON with sorted keys.
func FormatMetadata(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Sprintf("%v", m)
	}
	return strings.TrimSpace(b.String())
}
