package utils

import "testing"

func TestWeeksBetween(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01", "2024-01-15", 2},
		{"2024-01-01", "2024-01-08", 1},
		{"2024-01-01", "2024-01-10", 2}, // 9 天向上取整为 2 周
		{"2024-01-01", "2024-01-01", 0},
		{"2024-02-01", "2024-05-01", 13},
	}
	for _, c := range cases {
		got, err := WeeksBetween(c.start, c.end)
		if err != nil {
			t.Fatalf("WeeksBetween(%s, %s): %v", c.start, c.end, err)
		}
		if got != c.want {
			t.Fatalf("WeeksBetween(%s, %s) = %d, want %d", c.start, c.end, got, c.want)
		}
	}
}

func TestWeeksBetweenRejectsReversedRange(t *testing.T) {
	if _, err := WeeksBetween("2024-03-01", "2024-01-01"); err == nil {
		t.Fatal("expected error for reversed range")
	}
}

func TestWeeksBetweenRejectsBadDate(t *testing.T) {
	if _, err := WeeksBetween("01/02/2024", "2024-03-01"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
