package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPILabel(t *testing.T) {
	tests := []struct {
		name string
		days int
		want string
	}{
		{"Epoch", 0, "1.1"},
		{"Same Increment", 13, "1.1"},
		{"Second Increment", 14, "1.2"},
		{"Ninth Increment", 8 * 14, "1.9"},
		{"Tenth Increment", 9 * 14, "1.10"},
		{"Rollover", 10 * 14, "2.1"},
		{"Second Major End", 19 * 14, "2.10"},
		{"Before Epoch", -30, "1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date := PIEpoch.AddDate(0, 0, tt.days)
			assert.Equal(t, tt.want, PILabel(date))
		})
	}
}

func TestSortPIs(t *testing.T) {
	got := SortPIs([]string{"2.1", "1.10", "1.2", "1.9", "1.2", "1.1"})
	assert.Equal(t, []string{"1.1", "1.2", "1.9", "1.10", "2.1"}, got)
}

func TestComparePI(t *testing.T) {
	assert.Negative(t, ComparePI("1.9", "1.10"))
	assert.Positive(t, ComparePI("3.1", "2.10"))
	assert.Zero(t, ComparePI("1.5", "1.5"))
	assert.Negative(t, ComparePI("bogus", "1.1"))
}

func TestTruncateDay(t *testing.T) {
	in := time.Date(2024, time.March, 5, 17, 42, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), TruncateDay(in))
}
