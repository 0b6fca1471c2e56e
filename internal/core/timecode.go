package core

import (
	"fmt"
	"strings"
)

// FormatTimecode renders milliseconds as a zero-padded timecode with leading zero units
// dropped: 210000 -> "03:30", 3723000 -> "01:02:03". Sub-minute values get a "0:" prefix
// ("0:30").
func FormatTimecode(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	units := []int64{
		seconds / 86400,
		seconds % 86400 / 3600,
		seconds % 3600 / 60,
		seconds % 60,
	}

	start := 0
	for start < len(units)-1 && units[start] == 0 {
		start++
	}

	parts := make([]string, 0, len(units)-start)
	for _, u := range units[start:] {
		parts = append(parts, fmt.Sprintf("%02d", u))
	}

	code := strings.Join(parts, ":")
	if len(code) <= 3 {
		return "0:" + code
	}
	return code
}
