package utils

import "testing"

func TestHmToSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1h15m", 4500},
		{"1h30m", 5400},
		{"90s", 90},
		{"2d", 172800},
		{"1w", 604800},
		{"1y", 31540000},
		{"1M", 2628000},
		{"", 0},
		{"no duration here", 0},
		{"10m go clean the kitchen", 600},
	}
	for _, c := range cases {
		if got := HmToSeconds(c.in); got != c.want {
			t.Errorf("HmToSeconds(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHmToSecondsSaturates(t *testing.T) {
	if got := HmToSeconds("9999999999y"); got != maxTimerSeconds {
		t.Errorf("expected saturation to %d, got %d", maxTimerSeconds, got)
	}
	// large enough to overflow int64 parsing entirely
	if got := HmToSeconds("99999999999999999999999s"); got != maxTimerSeconds {
		t.Errorf("expected saturation to %d, got %d", maxTimerSeconds, got)
	}
	// components that parse as int64 but whose product would wrap negative
	// (2^61 minutes) or back around to zero (2^62 minutes) must saturate too
	if got := HmToSeconds("2305843009213693952m"); got != maxTimerSeconds {
		t.Errorf("expected saturation to %d, got %d", maxTimerSeconds, got)
	}
	if got := HmToSeconds("4611686018427387904m"); got != maxTimerSeconds {
		t.Errorf("expected saturation to %d, got %d", maxTimerSeconds, got)
	}
	if got := HmToSeconds("9223372036854775807y"); got != maxTimerSeconds {
		t.Errorf("expected saturation to %d, got %d", maxTimerSeconds, got)
	}
}

func TestStripHm(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1h15m spamming", "spamming"},
		{"spamming", "spamming"},
		{"1h", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := StripHm(c.in); got != c.want {
			t.Errorf("StripHm(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
