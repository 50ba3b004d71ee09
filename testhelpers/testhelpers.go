// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and county
// and returns it. Floor area and structural metadata use typical bungalow
// values so processing runs have something to measure.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name, county string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("county", county)
	record.Set("soil_type", "ordinary")
	record.Set("floor_area_sqm", 120.0)
	record.Set("floor_count", 1)
	record.Set("contingency_percentage", 0.10)
	record.Set("status", "draft")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestMaterial creates a material rate record and returns it.
func CreateTestMaterial(t *testing.T, app *pocketbase.PocketBase, code, unit string, unitPrice float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		t.Fatalf("failed to find materials collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("material_code", code)
	record.Set("description", code)
	record.Set("unit", unit)
	record.Set("unit_price", unitPrice)
	record.Set("source", "test")
	record.Set("region", "Nairobi")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test material: %v", err)
	}

	return record
}

// SeedSteelRates creates the two steel catalog entries the costing engine
// always resolves.
func SeedSteelRates(t *testing.T, app *pocketbase.PocketBase) {
	t.Helper()
	CreateTestMaterial(t, app, "reinforcement_steel_high_tensile", "kg", 145)
	CreateTestMaterial(t, app, "reinforcement_steel_mild", "kg", 130)
}

// CreateTestBOQItem creates a persisted bill line for read/export tests.
func CreateTestBOQItem(t *testing.T, app *pocketbase.PocketBase, projectID, runID, itemNumber, category string, sortOrder int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		t.Fatalf("failed to find boq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("run_id", runID)
	record.Set("sort_order", sortOrder)
	record.Set("item_number", itemNumber)
	record.Set("category", category)
	record.Set("description", "Test work item")
	record.Set("unit", "sqm")
	record.Set("net_quantity", 10.0)
	record.Set("waste_factor", 1.05)
	record.Set("gross_quantity", 10.5)
	record.Set("unit_rate", 100.0)
	record.Set("total_cost", 1050.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ item: %v", err)
	}

	return record
}
