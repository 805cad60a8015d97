package sla

import (
	"strings"
	"testing"
	"time"

	"github.com/monizb/vmp/models"
)

func testSettings() models.DueDateSettings {
	return models.DueDateSettings{
		AutoAssignDueDates: true,
		DueDateTimelines: map[string]int{
			models.SeverityCritical: 15,
			models.SeverityHigh:     30,
			models.SeverityMedium:   60,
			models.SeverityLow:      60,
		},
	}
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

func TestComputeDueDate(t *testing.T) {
	discovered := mustParse(t, "2024-01-10T00:00:00Z")

	tests := []struct {
		name     string
		severity string
		want     string
	}{
		{"critical adds 15 days", models.SeverityCritical, "2024-01-25T00:00:00Z"},
		{"high adds 30 days", models.SeverityHigh, "2024-02-09T00:00:00Z"},
		{"medium adds 60 days", models.SeverityMedium, "2024-03-10T00:00:00Z"},
		{"low adds 60 days", models.SeverityLow, "2024-03-10T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDueDate(testSettings(), tt.severity, discovered)
			if got == nil {
				t.Fatal("expected a due date, got nil")
			}
			want := mustParse(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestComputeDueDateDisabled(t *testing.T) {
	settings := testSettings()
	settings.AutoAssignDueDates = false
	if got := ComputeDueDate(settings, models.SeverityCritical, time.Now()); got != nil {
		t.Errorf("expected nil with auto-assign off, got %v", got)
	}
}

func TestComputeDueDateUnknownSeverity(t *testing.T) {
	if got := ComputeDueDate(testSettings(), "Informational", time.Now()); got != nil {
		t.Errorf("expected nil for unknown severity, got %v", got)
	}
}

func TestComputeDueDateCrossesMonthBoundary(t *testing.T) {
	// Calendar arithmetic, not hour counting: 2024-02-20 + 15 days lands
	// in March of a leap year.
	discovered := mustParse(t, "2024-02-20T12:00:00Z")
	got := ComputeDueDate(testSettings(), models.SeverityCritical, discovered)
	want := mustParse(t, "2024-03-06T12:00:00Z")
	if got == nil || !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func vulnWithDue(status string, due *time.Time) models.Vulnerability {
	return models.Vulnerability{Status: status, DueDate: due}
}

func TestIsOverdue(t *testing.T) {
	now := mustParse(t, "2024-06-15T00:00:00Z")
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		vuln models.Vulnerability
		want bool
	}{
		{"past due and open", vulnWithDue(models.StatusOpen, &past), true},
		{"past due but fixed", vulnWithDue(models.StatusFixed, &past), false},
		{"past due but closed", vulnWithDue(models.StatusClosed, &past), false},
		{"due in the future", vulnWithDue(models.StatusOpen, &future), false},
		{"no due date", vulnWithDue(models.StatusOpen, nil), false},
		{"due exactly now", vulnWithDue(models.StatusOpen, &now), false},
		{"in progress past due", vulnWithDue(models.StatusInProgress, &past), true},
		{"reopened past due", vulnWithDue(models.StatusReopened, &past), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverdue(tt.vuln, now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDueWithinWindow(t *testing.T) {
	now := mustParse(t, "2024-06-15T00:00:00Z")
	in3 := now.AddDate(0, 0, 3)
	in7 := now.AddDate(0, 0, 7)
	in8 := now.AddDate(0, 0, 8)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name string
		vuln models.Vulnerability
		want bool
	}{
		{"due in three days", vulnWithDue(models.StatusOpen, &in3), true},
		{"due exactly at window end", vulnWithDue(models.StatusOpen, &in7), false},
		{"due past the window", vulnWithDue(models.StatusOpen, &in8), false},
		{"already overdue", vulnWithDue(models.StatusOpen, &past), false},
		{"due exactly now", vulnWithDue(models.StatusOpen, &now), false},
		{"fixed within window", vulnWithDue(models.StatusFixed, &in3), false},
		{"no due date", vulnWithDue(models.StatusOpen, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDueWithinWindow(tt.vuln, now, DefaultDueSoonWindowDays); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetestEligible(t *testing.T) {
	now := mustParse(t, "2024-06-15T00:00:00Z")

	// Retest lands offset days after resolution; eligible when that falls
	// strictly inside (now, now+lookahead).
	resolvedRecently := now.AddDate(0, 0, -10) // retest in 20 days
	resolvedLongAgo := now.AddDate(0, 0, -40)  // retest already passed
	resolvedToday := now.AddDate(0, 0, -30)    // retest exactly now

	tests := []struct {
		name     string
		status   string
		resolved *time.Time
		want     bool
	}{
		{"fixed, retest in 20 days", models.StatusFixed, &resolvedRecently, true},
		{"fixed, retest already passed", models.StatusFixed, &resolvedLongAgo, false},
		{"fixed, retest exactly now", models.StatusFixed, &resolvedToday, false},
		{"open with resolved date", models.StatusOpen, &resolvedRecently, false},
		{"fixed without resolved date", models.StatusFixed, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := models.Vulnerability{Status: tt.status, ResolvedDate: tt.resolved}
			got := IsRetestEligible(v, now, DefaultRetestOffsetDays, DefaultRetestLookaheadDays)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateTimelines(t *testing.T) {
	tests := []struct {
		name      string
		timelines map[string]int
		wantErr   bool
		contains  string
	}{
		{"nil map", nil, false, ""},
		{"valid table", map[string]int{models.SeverityCritical: 15, models.SeverityLow: 365}, false, ""},
		{"boundary minimum", map[string]int{models.SeverityHigh: 1}, false, ""},
		{"zero days", map[string]int{models.SeverityHigh: 0}, true, "High"},
		{"negative days", map[string]int{models.SeverityMedium: -5}, true, "Medium"},
		{"over a year", map[string]int{models.SeverityLow: 366}, true, "Low"},
		{"unknown severity", map[string]int{"Informational": 30}, true, "Informational"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimelines(tt.timelines)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not name %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestMergeSettings(t *testing.T) {
	current := testSettings()

	t.Run("partial timeline merge keeps other entries", func(t *testing.T) {
		merged := MergeSettings(current, nil, map[string]int{models.SeverityCritical: 7})
		if merged.DueDateTimelines[models.SeverityCritical] != 7 {
			t.Errorf("critical = %d, want 7", merged.DueDateTimelines[models.SeverityCritical])
		}
		if merged.DueDateTimelines[models.SeverityHigh] != 30 {
			t.Errorf("high = %d, want 30 (untouched)", merged.DueDateTimelines[models.SeverityHigh])
		}
		if !merged.AutoAssignDueDates {
			t.Error("autoAssign flipped without being set")
		}
	})

	t.Run("toggle auto-assign only", func(t *testing.T) {
		off := false
		merged := MergeSettings(current, &off, nil)
		if merged.AutoAssignDueDates {
			t.Error("autoAssign should be off")
		}
		if merged.DueDateTimelines[models.SeverityMedium] != 60 {
			t.Error("timelines changed by a flag-only update")
		}
	})

	t.Run("merge does not mutate the input", func(t *testing.T) {
		MergeSettings(current, nil, map[string]int{models.SeverityLow: 10})
		if current.DueDateTimelines[models.SeverityLow] != 60 {
			t.Error("input settings were mutated")
		}
	})
}
