package schema

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// PIEpoch is the first day of program increment 1.1.
var PIEpoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// PIDays is the length of one increment in days.
const PIDays = 14

// PILabel returns the "major.minor" program increment label of a date. Every
// 14 days since PIEpoch advance the minor number, which runs from 1 to 10.
func PILabel(date time.Time) string {
	days := max(int(date.Sub(PIEpoch).Hours()/24), 0)
	n := days/PIDays + 1
	major := n/10 + 1
	minor := n % 10
	if minor == 0 {
		minor = 10
		major--
	}
	return fmt.Sprintf("%d.%d", major, minor)
}

// parsePI splits a "major.minor" label into its numbers. Unparseable parts sort first.
func parsePI(label string) (int, int) {
	majorText, minorText, _ := strings.Cut(label, ".")
	major, err := strconv.Atoi(majorText)
	if err != nil {
		major = -1
	}
	minor, err := strconv.Atoi(minorText)
	if err != nil {
		minor = -1
	}
	return major, minor
}

// ComparePI orders program increment labels numerically, so "1.10" follows "1.9".
func ComparePI(a, b string) int {
	aMajor, aMinor := parsePI(a)
	bMajor, bMinor := parsePI(b)
	if c := cmp.Compare(aMajor, bMajor); c != 0 {
		return c
	}
	if c := cmp.Compare(aMinor, bMinor); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortPIs returns the distinct labels in increment order.
func SortPIs(labels []string) []string {
	out := slices.Clone(labels)
	slices.SortFunc(out, ComparePI)
	return slices.Compact(out)
}

// TruncateDay drops the clock part of a time, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
