package collections_test

import (
	"testing"

	"atitoqs/collections"
	"atitoqs/testhelpers"
)

func TestResetStaleProcessing_ResetsStuckProjects(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	stuck := testhelpers.CreateTestProject(t, app, "Stuck Run", "Nairobi")
	stuck.Set("status", "processing")
	if err := app.Save(stuck); err != nil {
		t.Fatalf("failed to mark processing: %v", err)
	}

	if err := collections.ResetStaleProcessing(app); err != nil {
		t.Fatalf("ResetStaleProcessing() error: %v", err)
	}

	reloaded, err := app.FindRecordById("projects", stuck.Id)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if got := reloaded.GetString("status"); got != "draft" {
		t.Errorf("status = %q, want 'draft'", got)
	}
}

func TestResetStaleProcessing_LeavesHealthyProjects(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	active := testhelpers.CreateTestProject(t, app, "Healthy Active", "Nairobi")
	active.Set("status", "active")
	if err := app.Save(active); err != nil {
		t.Fatalf("failed to mark active: %v", err)
	}
	draft := testhelpers.CreateTestProject(t, app, "Healthy Draft", "Nairobi")

	if err := collections.ResetStaleProcessing(app); err != nil {
		t.Fatalf("ResetStaleProcessing() error: %v", err)
	}

	reloadedActive, _ := app.FindRecordById("projects", active.Id)
	if got := reloadedActive.GetString("status"); got != "active" {
		t.Errorf("active project status = %q, want 'active'", got)
	}
	reloadedDraft, _ := app.FindRecordById("projects", draft.Id)
	if got := reloadedDraft.GetString("status"); got != "draft" {
		t.Errorf("draft project status = %q, want 'draft'", got)
	}
}

func TestResetStaleProcessing_NoProjects(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.ResetStaleProcessing(app); err != nil {
		t.Errorf("ResetStaleProcessing() on empty database: %v", err)
	}
}

func TestResetStaleProcessing_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	stuck := testhelpers.CreateTestProject(t, app, "Twice Reset", "Nairobi")
	stuck.Set("status", "processing")
	if err := app.Save(stuck); err != nil {
		t.Fatalf("failed to mark processing: %v", err)
	}

	if err := collections.ResetStaleProcessing(app); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if err := collections.ResetStaleProcessing(app); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	reloaded, _ := app.FindRecordById("projects", stuck.Id)
	if got := reloaded.GetString("status"); got != "draft" {
		t.Errorf("status = %q, want 'draft'", got)
	}
}
