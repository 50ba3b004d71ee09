package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type materialDef struct {
	code        string
	description string
	unit        string
	unitPrice   float64
	source      string
}

// nairobiBaseRates is the seed material catalog: Nairobi-region base rates in
// KES. County location factors are applied at costing time, so the catalog
// itself stays region-neutral. Prices follow published IQSK/NCA indices and
// hardware quotes.
var nairobiBaseRates = []materialDef{
	// Basic materials.
	{"cement_bags", "Cement (50kg bag)", "bags", 780, "iqsk"},
	{"river_sand_lorry", "River Sand (7-ton lorry)", "lorry", 28000, "hardware"},
	{"ballast_lorry", "Ballast (7-ton lorry)", "lorry", 26000, "hardware"},
	{"clay_bricks", "Clay Bricks", "No.", 15, "hardware"},
	{"hoop_iron_roll", "Hoop Iron (roll)", "rolls", 2800, "hardware"},
	{"nails_kg", "Wire Nails", "kg", 220, "hardware"},
	{"assorted_nails_kg", "Assorted Nails", "kg", 250, "hardware"},
	{"binding_wire_rolls", "Binding Wire (25kg roll)", "rolls", 4500, "hardware"},
	{"polythene_rolls", "Polythene Sheeting (roll)", "rolls", 3500, "hardware"},

	// Reinforcement bars.
	{"t10_bars", "High Tensile Bar T10 (12m)", "pcs", 850, "nca"},
	{"t12_bars", "High Tensile Bar T12 (12m)", "pcs", 1250, "nca"},
	{"t16_bars", "High Tensile Bar T16 (12m)", "pcs", 2200, "nca"},
	{"r6_bars", "Mild Steel Bar R6 (12m)", "pcs", 450, "nca"},
	{"reinforcement_steel_high_tensile", "High Tensile Reinforcement Steel", "kg", 145, "nca"},
	{"reinforcement_steel_mild", "Mild Steel Reinforcement", "kg", 130, "nca"},

	// Timber.
	{"blue_gum_6x1_ft", "Blue Gum Timber 6x1", "ft", 55, "hardware"},
	{"blue_gum_3x2_ft", "Blue Gum Timber 3x2", "ft", 45, "hardware"},
	{"blue_gum_4x2_ft", "Blue Gum Timber 4x2", "ft", 60, "hardware"},

	// Roofing.
	{"g28_gi_sheet_sqm", "G28 GI Roofing Sheet", "sqm", 650, "hardware"},
	{"roofing_nails_kg", "Roofing Nails", "kg", 280, "hardware"},

	// Doors and windows.
	{"steel_door_3x7", "Steel Door 3x7 complete", "No.", 18500, "hardware"},
	{"flush_door_3x7", "Flush Door 3x7", "No.", 6500, "hardware"},
	{"door_frame_3x7", "Door Frame 3x7", "No.", 3200, "hardware"},
	{"steel_casement_window", "Steel Casement Window (standard)", "No.", 9500, "hardware"},
	{"putty_kg", "Glazing Putty", "kg", 350, "hardware"},
	{"paint_liter", "Emulsion Paint", "liter", 650, "hardware"},

	// Measured work rates for substructure items (labour and plant
	// inclusive, priced per unit of finished work).
	{"site_clearance", "Site clearance and topsoil stripping", "sqm", 120, "iqsk"},
	{"excavation_soil", "Excavation for foundations", "m3", 850, "iqsk"},
	{"hardcore_fill", "Hardcore filling and compaction", "m3", 2400, "iqsk"},
	{"blinding_concrete", "Blinding concrete (1:3:6) 50mm", "sqm", 950, "iqsk"},
	{"foundation_concrete_c25", "Foundation concrete C25/30", "m3", 16500, "iqsk"},
	{"dpm_1000_gauge", "Damp proof membrane 1000 gauge", "sqm", 180, "iqsk"},
	{"anti_termite_treatment", "Anti-termite treatment", "sqm", 220, "iqsk"},
	{"ground_slab_concrete_c25", "Ground slab concrete C25/30 150mm", "sqm", 2800, "iqsk"},
}

// Seed populates the materials catalog and a sample project. It is safe to
// call on every startup because both steps return early when records already
// exist.
func Seed(app *pocketbase.PocketBase) error {
	if err := seedMaterials(app); err != nil {
		return err
	}
	return seedDemoProject(app)
}

func seedMaterials(app *pocketbase.PocketBase) error {
	materialsCol, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		return fmt.Errorf("seed: could not find materials collection: %w", err)
	}

	existing, err := app.FindAllRecords(materialsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query materials: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	for _, def := range nairobiBaseRates {
		record := core.NewRecord(materialsCol)
		record.Set("material_code", def.code)
		record.Set("description", def.description)
		record.Set("unit", def.unit)
		record.Set("unit_price", def.unitPrice)
		record.Set("confidence_score", 0.9)
		record.Set("source", def.source)
		record.Set("region", "Nairobi")
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not save material %q: %w", def.code, err)
		}
	}

	log.Printf("seed: created %d material rates\n", len(nairobiBaseRates))
	return nil
}

func seedDemoProject(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}

	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	record := core.NewRecord(projectsCol)
	record.Set("name", "Kilimani 3-Bedroom Bungalow")
	record.Set("client_name", "A. Otieno")
	record.Set("county", "Nairobi")
	record.Set("location", "Kilimani")
	record.Set("soil_type", "red coffee")
	record.Set("floor_area_sqm", 145.0)
	record.Set("floor_count", 1)
	record.Set("contingency_percentage", 0.10)
	record.Set("status", "draft")
	if err := app.Save(record); err != nil {
		return fmt.Errorf("seed: could not save demo project: %w", err)
	}

	log.Println("seed: created demo project")
	return nil
}
