package ist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-14T10:30:00", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14T10:30", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14T10:30:00Z", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14T10:30:00.000Z", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14T10:30:00+05:30", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14T10:30:00-0400", "2025-03-14T10:30:00+05:30"},
		{"2025-03-14", "2025-03-14T00:00:00+05:30"},
		{"2025-03-14 10:30:00", "2025-03-14T00:00:00+05:30"},
		{"  2025-03-14T09:05  ", "2025-03-14T09:05:00+05:30"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Normalize(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}

	for _, bad := range []string{"", "tomorrow", "2025-13-01", "2025-03-14T25:00", "2025-03-14T10"} {
		_, err := Normalize(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatDisplayIndependentOfLocalZone(t *testing.T) {
	inputs := []string{
		"2025-03-14T10:30:00",
		"2025-03-14T10:30:00Z",
		"2025-12-31T23:59",
		"2025-03-14",
	}
	want := []string{
		"14 Mar 2025, 10:30 AM IST",
		"14 Mar 2025, 10:30 AM IST",
		"31 Dec 2025, 11:59 PM IST",
		"14 Mar 2025, 12:00 AM IST",
	}

	original := time.Local
	t.Cleanup(func() { time.Local = original })

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("PST", -8*3600),
		time.FixedZone("JST", 9*3600),
		time.FixedZone("NPT", 5*3600+45*60),
	}
	for _, zone := range zones {
		time.Local = zone
		for i, in := range inputs {
			assert.Equal(t, want[i], FormatDisplay(in), "zone %s input %s", zone, in)
		}
	}
}

func TestFormatDisplayIdempotent(t *testing.T) {
	raw := "2025-07-01T18:45:00Z"
	normalized, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, FormatDisplay(raw), FormatDisplay(normalized))
	assert.Equal(t, "garbage", FormatDisplay("garbage"))
}

func TestStoredRoundTrip(t *testing.T) {
	parsed, err := Parse("2025-03-14T10:30:00")
	require.NoError(t, err)

	stored := ToStored(parsed)
	assert.Equal(t, time.UTC, stored.Location())
	assert.Equal(t, 10, stored.Hour())

	back := FromStored(stored)
	assert.True(t, parsed.Equal(back))
	assert.Equal(t, "2025-03-14T10:30:00", WallClock(back))
	assert.Equal(t, "2025-03-14T05:00:00Z", back.UTC().Format(time.RFC3339))
}
