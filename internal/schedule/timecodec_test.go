package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"12:30", 750, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:00", 0, true},
		{"0900", 0, true},
		{"ab:cd", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToMinutes(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "12:00 AM"},
		{30, "12:30 AM"},
		{540, "09:00 AM"},
		{719, "11:59 AM"},
		{720, "12:00 PM"},
		{750, "12:30 PM"},
		{810, "01:30 PM"},
		{1439, "11:59 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDisplay(tt.minutes))
		})
	}
}

func TestDisplayRoundTrip(t *testing.T) {
	for m := 0; m < 1440; m++ {
		got, err := ParseDisplay(ToDisplay(m))
		require.NoError(t, err, "minute %d", m)
		require.Equal(t, m, got, "minute %d", m)
	}
}

func TestParseDisplayRejectsJunk(t *testing.T) {
	bad := []string{
		"",
		"09:00",
		"13:00 PM",
		"00:30 AM",
		"09:60 AM",
		"09:00 am",
		"09:00 XX",
		"ab:cd AM",
	}
	for _, in := range bad {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDisplay(in)
			assert.ErrorIs(t, err, ErrMalformedTime)
		})
	}
}
