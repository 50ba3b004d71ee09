package collections_test

import (
	"testing"

	"atitoqs/collections"
	"atitoqs/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"projects",
	"materials",
	"takeoff_results",
	"boq_items",
	"bbs_items",
	"cost_summaries",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	collections.Setup(app)

	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_ProjectsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	fields := []string{
		"name", "client_name", "county", "location", "soil_type",
		"floor_area_sqm", "floor_count", "contingency_percentage",
		"wall_height_m", "column_size_mm", "floor_height_mm",
		"beam_width_mm", "beam_depth_mm", "slab_thickness_m",
		"status", "estimated_cost", "last_run_id", "created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("projects: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"draft": true, "processing": true, "active": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing status value: %q", v)
		}
	} else {
		t.Errorf("status field is not a SelectField")
	}
}

func TestSetup_MaterialsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("materials")

	fields := []string{"material_code", "description", "unit", "unit_price", "confidence_score", "source", "region", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("materials: missing field %q", f)
		}
	}
}

func TestSetup_TakeoffResultsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("takeoff_results")

	fields := []string{
		"project", "run_id", "element_type", "unit",
		"net_quantity", "waste_factor", "gross_quantity",
		"count", "net_volume_m3", "gross_volume_m3",
		"details", "assumed", "confidence_score",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("takeoff_results: missing field %q", f)
		}
	}

	projectField := col.Fields.GetByName("project")
	if rf, ok := projectField.(*core.RelationField); ok {
		if rf.MaxSelect != 1 {
			t.Errorf("takeoff_results.project: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
		if !rf.CascadeDelete {
			t.Error("takeoff_results.project: expected CascadeDelete")
		}
	} else {
		t.Errorf("takeoff_results.project is not a RelationField")
	}
}

func TestSetup_BOQItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("boq_items")

	fields := []string{
		"project", "run_id", "sort_order", "item_number", "category",
		"sub_category", "description", "unit", "net_quantity",
		"waste_factor", "gross_quantity", "material_code", "unit_rate",
		"total_cost", "materials_breakdown", "costed_by_markup",
		"ai_extracted", "confidence_score", "needs_review", "remarks",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("boq_items: missing field %q", f)
		}
	}
}

func TestSetup_BBSItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("bbs_items")

	fields := []string{
		"project", "run_id", "sort_order", "bar_mark", "member_type",
		"location", "bar_diameter_mm", "bar_type", "shape_code",
		"dimensions", "total_length_mm", "bar_count",
		"unit_weight_kg_per_m", "total_weight_kg", "remarks",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("bbs_items: missing field %q", f)
		}
	}

	barTypeField := col.Fields.GetByName("bar_type")
	if sf, ok := barTypeField.(*core.SelectField); ok {
		expected := map[string]bool{"T": true, "R": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected bar type value: %q", v)
			}
		}
	} else {
		t.Errorf("bar_type field is not a SelectField")
	}

	memberField := col.Fields.GetByName("member_type")
	if sf, ok := memberField.(*core.SelectField); ok {
		expected := map[string]bool{"Column": true, "Beam": true, "Slab": true, "Foundation": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected member type value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing member type value: %q", v)
		}
	} else {
		t.Errorf("member_type field is not a SelectField")
	}
}

func TestSetup_CostSummariesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("cost_summaries")

	fields := []string{
		"project", "run_id", "boq_cost", "steel_cost", "materials_subtotal",
		"preliminary_cost", "provisional_sum", "labor_overheads",
		"subtotal_before_contingency", "contingency_percentage",
		"contingency_amount", "subtotal_before_vat", "vat_percentage",
		"vat_amount", "grand_total", "category_breakdown", "county",
		"location_factor", "location_factor_flagged", "missing_materials",
		"currency", "created",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("cost_summaries: missing field %q", f)
		}
	}
}

func TestSetup_ArtifactCascadeDeleteOnProject(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	proj := testhelpers.CreateTestProject(t, app, "Cascade Test", "Nairobi")
	item := testhelpers.CreateTestBOQItem(t, app, proj.Id, "run-1", "A.1", "Preliminaries", 1)

	if err := app.Delete(proj); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	if _, err := app.FindRecordById("boq_items", item.Id); err == nil {
		t.Error("bill item should have been cascade-deleted with project")
	}
}
