package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	f.Add("ADA_Project_1_Done", 10)
	f.Add("", 0)
	f.Add("ééé", 4)
	f.Add("short", -1)

	f.Fuzz(func(t *testing.T, s string, width int) {
		out := TruncateText(s, width)
		if width > 3 && utf8.RuneCountInString(s) > width && utf8.RuneCountInString(out) != width {
			t.Errorf("TruncateText(%q, %d) = %q has wrong width", s, width, out)
		}
	})
}

// FuzzParseBoolString ensures parsing never panics and only accepts known words.
func FuzzParseBoolString(f *testing.F) {
	for _, seed := range []string{"yes", "no", "1", "0", "TRUE", "", "maybe"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		_, err := ParseBoolString(s)
		if err == nil && len(s) > 5 {
			t.Errorf("ParseBoolString accepted %q", s)
		}
	})
}
