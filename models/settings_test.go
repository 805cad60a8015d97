package models

import "testing"

func TestDefaultDueDateSettings(t *testing.T) {
	s := DefaultDueDateSettings()

	if !s.AutoAssignDueDates {
		t.Error("auto-assign should default on")
	}

	want := map[string]int{
		SeverityCritical: 15,
		SeverityHigh:     30,
		SeverityMedium:   60,
		SeverityLow:      60,
	}
	for severity, days := range want {
		if got := s.DueDateTimelines[severity]; got != days {
			t.Errorf("%s = %d days, want %d", severity, got, days)
		}
	}
	if len(s.DueDateTimelines) != len(want) {
		t.Errorf("timeline table has %d entries, want %d", len(s.DueDateTimelines), len(want))
	}
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow} {
		if !ValidSeverity(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []string{"", "critical", "Informational"} {
		if ValidSeverity(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleSecurity, RoleDev, RoleProductOwner} {
		if !ValidRole(r) {
			t.Errorf("%s should be valid", r)
		}
	}
	if ValidRole("admin") {
		t.Error("role matching must be exact")
	}
}
