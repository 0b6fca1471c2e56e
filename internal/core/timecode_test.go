package core

import "testing"

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{5000, "0:05"},
		{30000, "0:30"},
		{60000, "01:00"},
		{210000, "03:30"},
		{210999, "03:30"},
		{3723000, "01:02:03"},
		{90061000, "01:01:01:01"},
		{-1000, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTimecode(tt.ms); got != tt.want {
			t.Errorf("FormatTimecode(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
