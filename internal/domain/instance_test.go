package domain

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	overdueAt := time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)
	clearAt := time.Date(2024, 8, 3, 4, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before overdue", overdueAt.Add(-time.Minute), StatusPending},
		{"exactly at overdue", overdueAt, StatusOverdue},
		{"between overdue and clear", overdueAt.Add(time.Hour), StatusOverdue},
		{"exactly at clear", clearAt, StatusCleared},
		{"after clear", clearAt.Add(time.Hour), StatusCleared},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusAt(tc.now, overdueAt, clearAt); got != tc.want {
				t.Fatalf("StatusAt(%v) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	for s, terminal := range map[Status]bool{
		StatusPending:   false,
		StatusOverdue:   false,
		StatusCompleted: true,
		StatusSkipped:   true,
		StatusCleared:   true,
	} {
		if s.Terminal() != terminal {
			t.Fatalf("%s.Terminal() = %v, want %v", s, s.Terminal(), terminal)
		}
	}
}

func TestParseOverdueDelayDurations(t *testing.T) {
	cases := map[string]time.Duration{
		"immediate": 0,
		"1h":        time.Hour,
		"6h":        6 * time.Hour,
		"1d":        24 * time.Hour,
		"3d":        72 * time.Hour,
		"7d":        168 * time.Hour,
	}
	for s, want := range cases {
		d, err := ParseOverdueDelay(s)
		if err != nil {
			t.Fatalf("ParseOverdueDelay(%q): %v", s, err)
		}
		if d.Duration() != want {
			t.Fatalf("%q.Duration() = %v, want %v", s, d.Duration(), want)
		}
	}

	if _, err := ParseOverdueDelay("2 weeks"); err == nil {
		t.Fatal("expected error for unknown delay")
	}
}
