package astro

import (
	"errors"
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want ClockTime
	}{
		{in: "12:00 AM", want: 0},
		{in: "12:59 AM", want: 59},
		{in: "1:00 AM", want: 60},
		{in: "07:56 AM", want: 7*60 + 56},
		{in: "11:59 AM", want: 719},
		{in: "12:00 PM", want: 720},
		{in: "12:30 PM", want: 750},
		{in: "1:00 PM", want: 780},
		{in: "06:12 PM", want: 18*60 + 12},
		{in: "11:59 PM", want: 1439},
		{in: "  7:05 pm ", want: 19*60 + 5},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if err != nil {
				t.Fatalf("ParseClockTime(%q) err = %v; want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseClockTime(%q) = %d; want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClockTime_monotonicWithinHalfDay(t *testing.T) {
	prev := ClockTime(-1)
	for _, period := range []string{"AM", "PM"} {
		for _, h := range []int{12, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11} {
			for _, m := range []int{0, 15, 30, 59} {
				s := time.Date(2025, 1, 1, h, m, 0, 0, time.UTC).Format("3:04")
				if h == 12 {
					s = "12:" + s[len(s)-2:]
				}
				got, err := ParseClockTime(s + " " + period)
				if err != nil {
					t.Fatalf("ParseClockTime(%q): %v", s+" "+period, err)
				}
				if got <= prev {
					t.Fatalf("ParseClockTime(%q) = %d; not greater than previous %d", s+" "+period, got, prev)
				}
				prev = got
			}
		}
	}
}

func TestParseClockTime_invalid(t *testing.T) {
	tests := []string{
		"",
		"7:56",
		"7:56 XM",
		"x:10 AM",
		"7:xx AM",
		"13:00 PM",
		"0:30 AM",
		"7:60 AM",
		"7:5 AM",
		"756 AM",
		"7:56 AM extra",
		"123:00 AM",
		"+7:05 AM",
		"7:+5 PM",
		"+1:+0 AM",
		"-1:00 PM",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseClockTime(in)
			if err == nil {
				t.Fatalf("ParseClockTime(%q) err = nil; want error", in)
			}
			if !errors.Is(err, ErrInvalidTimeFormat) {
				t.Errorf("ParseClockTime(%q) err = %v; want ErrInvalidTimeFormat", in, err)
			}
		})
	}
}

func TestClockTime_String(t *testing.T) {
	if got := ClockTime(0).String(); got != "00:00" {
		t.Errorf("ClockTime(0) = %q; want 00:00", got)
	}
	if got := ClockTime(1439).String(); got != "23:59" {
		t.Errorf("ClockTime(1439) = %q; want 23:59", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("weather api local layout", func(t *testing.T) {
		got, err := ParseTimestamp("2025-03-10 21:00")
		if err != nil {
			t.Fatalf("ParseTimestamp: %v", err)
		}
		if ClockOf(got) != 21*60 {
			t.Errorf("ClockOf = %d; want %d", ClockOf(got), 21*60)
		}
	})

	t.Run("rfc3339 keeps the wall clock of its offset", func(t *testing.T) {
		got, err := ParseTimestamp("2025-03-10T05:30:00+02:00")
		if err != nil {
			t.Fatalf("ParseTimestamp: %v", err)
		}
		if ClockOf(got) != 5*60+30 {
			t.Errorf("ClockOf = %d; want %d", ClockOf(got), 5*60+30)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseTimestamp("tomorrow at noon")
		if !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("err = %v; want ErrInvalidTimeFormat", err)
		}
	})
}
