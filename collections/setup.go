package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ProjectStatuses is the project lifecycle vocabulary. Processing is
// transient; a crashed run is rolled back to draft.
var ProjectStatuses = []string{"draft", "processing", "active"}

// Setup programmatically creates/ensures the projects, materials,
// takeoff_results, boq_items, bbs_items and cost_summaries collections exist.
func Setup(app *pocketbase.PocketBase) {
	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "county", Required: false})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.TextField{Name: "soil_type", Required: false})
		c.Fields.Add(&core.NumberField{Name: "floor_area_sqm", Required: false})
		c.Fields.Add(&core.NumberField{Name: "floor_count", Required: false})
		c.Fields.Add(&core.NumberField{Name: "contingency_percentage", Required: false})
		c.Fields.Add(&core.NumberField{Name: "wall_height_m", Required: false})
		c.Fields.Add(&core.NumberField{Name: "column_size_mm", Required: false})
		c.Fields.Add(&core.NumberField{Name: "floor_height_mm", Required: false})
		c.Fields.Add(&core.NumberField{Name: "beam_width_mm", Required: false})
		c.Fields.Add(&core.NumberField{Name: "beam_depth_mm", Required: false})
		c.Fields.Add(&core.NumberField{Name: "slab_thickness_m", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    ProjectStatuses,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "estimated_cost", Required: false})
		c.Fields.Add(&core.TextField{Name: "last_run_id", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "materials", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "material_code", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: true})
		c.Fields.Add(&core.NumberField{Name: "confidence_score", Required: false})
		c.Fields.Add(&core.TextField{Name: "source", Required: false})
		c.Fields.Add(&core.TextField{Name: "region", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "takeoff_results", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "run_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "element_type", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "net_quantity", Required: false})
		c.Fields.Add(&core.NumberField{Name: "waste_factor", Required: true})
		c.Fields.Add(&core.NumberField{Name: "gross_quantity", Required: false})
		c.Fields.Add(&core.NumberField{Name: "count", Required: false})
		c.Fields.Add(&core.NumberField{Name: "net_volume_m3", Required: false})
		c.Fields.Add(&core.NumberField{Name: "gross_volume_m3", Required: false})
		c.Fields.Add(&core.JSONField{Name: "details", Required: false})
		c.Fields.Add(&core.BoolField{Name: "assumed", Required: false})
		c.Fields.Add(&core.NumberField{Name: "confidence_score", Required: false})
	})

	ensureCollection(app, "boq_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "run_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "item_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "category", Required: true})
		c.Fields.Add(&core.TextField{Name: "sub_category", Required: false})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "net_quantity", Required: false})
		c.Fields.Add(&core.NumberField{Name: "waste_factor", Required: true})
		c.Fields.Add(&core.NumberField{Name: "gross_quantity", Required: false})
		c.Fields.Add(&core.TextField{Name: "material_code", Required: false})
		c.Fields.Add(&core.NumberField{Name: "unit_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_cost", Required: false})
		c.Fields.Add(&core.JSONField{Name: "materials_breakdown", Required: false})
		c.Fields.Add(&core.BoolField{Name: "costed_by_markup", Required: false})
		c.Fields.Add(&core.BoolField{Name: "ai_extracted", Required: false})
		c.Fields.Add(&core.NumberField{Name: "confidence_score", Required: false})
		c.Fields.Add(&core.BoolField{Name: "needs_review", Required: false})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
	})

	ensureCollection(app, "bbs_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "run_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "bar_mark", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "member_type",
			Required:  true,
			Values:    []string{"Column", "Beam", "Slab", "Foundation"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.NumberField{Name: "bar_diameter_mm", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "bar_type",
			Required:  true,
			Values:    []string{"T", "R"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "shape_code", Required: true})
		c.Fields.Add(&core.JSONField{Name: "dimensions", Required: false})
		c.Fields.Add(&core.NumberField{Name: "total_length_mm", Required: true})
		c.Fields.Add(&core.NumberField{Name: "bar_count", Required: true})
		c.Fields.Add(&core.NumberField{Name: "unit_weight_kg_per_m", Required: true})
		c.Fields.Add(&core.NumberField{Name: "total_weight_kg", Required: false})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
	})

	ensureCollection(app, "cost_summaries", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "run_id", Required: true})
		c.Fields.Add(&core.NumberField{Name: "boq_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "steel_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "materials_subtotal", Required: false})
		c.Fields.Add(&core.NumberField{Name: "preliminary_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "provisional_sum", Required: false})
		c.Fields.Add(&core.NumberField{Name: "labor_overheads", Required: false})
		c.Fields.Add(&core.NumberField{Name: "subtotal_before_contingency", Required: false})
		c.Fields.Add(&core.NumberField{Name: "contingency_percentage", Required: false})
		c.Fields.Add(&core.NumberField{Name: "contingency_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "subtotal_before_vat", Required: false})
		c.Fields.Add(&core.NumberField{Name: "vat_percentage", Required: false})
		c.Fields.Add(&core.NumberField{Name: "vat_amount", Required: false})
		c.Fields.Add(&core.NumberField{Name: "grand_total", Required: false})
		c.Fields.Add(&core.JSONField{Name: "category_breakdown", Required: false})
		c.Fields.Add(&core.TextField{Name: "county", Required: false})
		c.Fields.Add(&core.NumberField{Name: "location_factor", Required: false})
		c.Fields.Add(&core.BoolField{Name: "location_factor_flagged", Required: false})
		c.Fields.Add(&core.JSONField{Name: "missing_materials", Required: false})
		c.Fields.Add(&core.TextField{Name: "currency", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
