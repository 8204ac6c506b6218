package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/api/apperr"
)

func TestBucketsFor(t *testing.T) {
	ts := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)

	utc := BucketsFor(ts, time.UTC)
	assert.Equal(t, Buckets{Date: "2024-01-01", Week: "2024-00", Month: "2024-01", Hour: "23"}, utc)

	plusOne, err := LoadZone("+01:00")
	require.NoError(t, err)
	shifted := BucketsFor(ts, plusOne)
	assert.Equal(t, "2024-01-02", shifted.Date)
	assert.Equal(t, "00", shifted.Hour)
}

func TestWeekOfYear(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		// 2023-01-01 is a Sunday, so it opens week 01.
		{"year starting on sunday", time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), "2023-01"},
		{"saturday before first sunday", time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC), "2022-00"},
		{"first sunday", time.Date(2022, 1, 2, 12, 0, 0, 0, time.UTC), "2022-01"},
		{"mid year", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), "2024-23"},
		{"year end", time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), "2024-52"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketsFor(tt.day, time.UTC).Week)
		})
	}
}

func TestBucketsForDSTUsesOffsetAtInstant(t *testing.T) {
	ny, err := LoadZone("America/New_York")
	require.NoError(t, err)

	// 2024-03-10 02:00 local does not exist; 06:30Z is 01:30 EST, 07:30Z is 03:30 EDT.
	before := BucketsFor(time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC), ny)
	after := BucketsFor(time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC), ny)

	assert.Equal(t, "01", before.Hour)
	assert.Equal(t, "03", after.Hour)
}

func TestLoadZone(t *testing.T) {
	tests := []struct {
		in         string
		wantOffset int
		wantErr    bool
	}{
		{in: "", wantOffset: 0},
		{in: "UTC", wantOffset: 0},
		{in: "+01:00", wantOffset: 3600},
		{in: "-0530", wantOffset: -(5*3600 + 30*60)},
		{in: "+05", wantOffset: 5 * 3600},
		{in: "Asia/Kolkata", wantOffset: 5*3600 + 30*60},
		{in: "+25:00", wantErr: true},
		{in: "Mars/Olympus", wantErr: true},
	}

	ref := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := LoadZone(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindInvalidArgument))
				return
			}
			require.NoError(t, err)
			_, offset := ref.In(loc).Zone()
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
