package timeutil

import (
	"testing"
	"time"
)

func TestDayKeyUsesUTC(t *testing.T) {
	// 23:30 in UTC+2 is 21:30 UTC the same day; 00:30 in UTC+2 is the
	// previous UTC day.
	zone := time.FixedZone("EET", 2*3600)
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{name: "same utc day", ts: time.Date(2024, 1, 5, 23, 30, 0, 0, zone), want: "2024-01-05"},
		{name: "previous utc day", ts: time.Date(2024, 1, 5, 0, 30, 0, 0, zone), want: "2024-01-04"},
		{name: "already utc", ts: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), want: "2024-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayKey(tt.ts); got != tt.want {
				t.Fatalf("DayKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCutoff(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		days int
		want time.Time
	}{
		{name: "week", days: 7, want: time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)},
		{name: "zero", days: 0, want: now},
		{name: "negative clamps to zero", days: -3, want: now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cutoff(now, tt.days); !got.Equal(tt.want) {
				t.Fatalf("Cutoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysInRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []string
	}{
		{
			name:  "five days inclusive",
			start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC),
			want:  []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		},
		{
			name:  "single day",
			start: time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC),
			want:  []string{"2024-01-03"},
		},
		{
			name:  "month boundary",
			start: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			want:  []string{"2024-01-31", "2024-02-01"},
		},
		{
			name:  "inverted range",
			start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysInRange(tt.start, tt.end)
			if len(got) != len(tt.want) {
				t.Fatalf("DaysInRange() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("DaysInRange()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 1, 5, 18, 45, 30, 0, time.UTC)
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := StartOfDay(ts); !got.Equal(want) {
		t.Fatalf("StartOfDay() = %v, want %v", got, want)
	}
}
