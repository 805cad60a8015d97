package handlers

import (
	"testing"

	"github.com/monizb/vmp/models"
)

// The first-read seed must be insert-only: a $set here would let two
// concurrent first reads clobber an existing settings document instead of
// converging on it.
func TestSettingsSeedIsInsertOnly(t *testing.T) {
	doc := settingsSeed()

	if _, ok := doc["$set"]; ok {
		t.Fatal("seed uses $set; existing settings would be overwritten")
	}

	raw, ok := doc["$setOnInsert"]
	if !ok {
		t.Fatal("seed missing $setOnInsert")
	}
	seeded, ok := raw.(models.DueDateSettings)
	if !ok {
		t.Fatalf("seed payload is %T, want models.DueDateSettings", raw)
	}

	if !seeded.AutoAssignDueDates {
		t.Error("seeded settings must default auto-assign on")
	}
	want := map[string]int{
		models.SeverityCritical: 15,
		models.SeverityHigh:     30,
		models.SeverityMedium:   60,
		models.SeverityLow:      60,
	}
	for severity, days := range want {
		if got := seeded.DueDateTimelines[severity]; got != days {
			t.Errorf("%s = %d days, want %d", severity, got, days)
		}
	}
}
