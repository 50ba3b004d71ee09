package services

import (
	"fmt"
	"strings"
)

// BoQ section identifiers. Item numbers are <section>.<n> with a counter
// per section, sequential within one generation run.
const (
	SectionPreliminaries  = "A"
	SectionSubstructure   = "B"
	SectionSuperstructure = "C"
)

// MaterialRequirement is one constituent material of a measured work item,
// derived from a recipe and the item's gross quantity.
type MaterialRequirement struct {
	QuantityPerUnit float64 `json:"quantity_per_unit"`
	TotalQuantity   float64 `json:"total_quantity"`
	Unit            string  `json:"unit"`
}

// BOQLineItem is one priced line of the bill of quantities. Quantities are
// fixed at generation time; UnitRate and TotalCost are filled by the costing
// engine.
type BOQLineItem struct {
	ItemNumber    string  `json:"item_number"`
	Category      string  `json:"category"`
	SubCategory   string  `json:"sub_category,omitempty"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit"`
	NetQuantity   float64 `json:"net_quantity"`
	WasteFactor   float64 `json:"waste_factor"`
	GrossQuantity float64 `json:"gross_quantity"`

	// MaterialCode names the catalog entry whose rate prices this line.
	// Empty when the line is priced from its materials breakdown or by
	// markup.
	MaterialCode string  `json:"material_code,omitempty"`
	UnitRate     float64 `json:"unit_rate"`
	TotalCost    float64 `json:"total_cost"`

	MaterialsBreakdown map[string]MaterialRequirement `json:"materials_breakdown,omitempty"`

	// CostedByMarkup marks lines recovered through the preliminaries
	// markup rather than priced directly.
	CostedByMarkup bool `json:"costed_by_markup,omitempty"`

	AIExtracted bool    `json:"ai_extracted"`
	Confidence  float64 `json:"confidence_score,omitempty"`
	NeedsReview bool    `json:"needs_review,omitempty"`
	Remarks     string  `json:"remarks,omitempty"`
}

// itemNumberer issues sequential item numbers per section within one
// generation run.
type itemNumberer struct {
	counts map[string]int
}

func newItemNumberer() *itemNumberer {
	return &itemNumberer{counts: map[string]int{}}
}

func (n *itemNumberer) next(section string) string {
	n.counts[section]++
	return fmt.Sprintf("%s.%d", section, n.counts[section])
}

// GenerateBOQ builds the full structured bill: Section A preliminaries,
// Section B substructure derived from the floor area, Section C
// superstructure from takeoff quantities with per-recipe material
// breakdowns. Output order is deterministic.
func GenerateBOQ(std Standards, params ProjectParams, takeoff TakeoffSet) ([]BOQLineItem, error) {
	if params.FloorAreaSqm < 0 {
		return nil, fmt.Errorf("floor area must not be negative")
	}

	nums := newItemNumberer()
	var items []BOQLineItem
	items = append(items, preliminariesItems(nums)...)
	items = append(items, substructureItems(std, params, nums)...)

	super, err := superstructureItems(std, takeoff, nums)
	if err != nil {
		return nil, err
	}
	items = append(items, super...)

	return items, nil
}

// preliminariesItems emits Section A. The lines carry no rate; the costing
// engine recovers them through the preliminaries markup.
func preliminariesItems(nums *itemNumberer) []BOQLineItem {
	descriptions := []string{
		"Mobilization and demobilization",
		"Contractor's all-risk insurance",
		"Site offices and stores",
		"Water for construction",
		"Temporary works",
		"Safety and security",
	}

	items := make([]BOQLineItem, 0, len(descriptions))
	for _, desc := range descriptions {
		items = append(items, BOQLineItem{
			ItemNumber:     nums.next(SectionPreliminaries),
			Category:       "Preliminaries",
			Description:    desc,
			Unit:           "Sum",
			NetQuantity:    1.0,
			WasteFactor:    1.0,
			GrossQuantity:  1.0,
			CostedByMarkup: true,
			Remarks:        "Recovered as percentage of project subtotal",
		})
	}
	return items
}

// substructureItems emits Section B: excavation, foundation concrete,
// hardcore, DPM and the ground slab, all derived from the ground floor area.
func substructureItems(std Standards, params ProjectParams, nums *itemNumberer) []BOQLineItem {
	floorArea := params.FloorAreaSqm
	foundationArea := floorArea * std.Defaults.FoundationAreaFraction
	excavationVolume := foundationArea * std.Defaults.ExcavationDepthM

	soil := params.SoilType
	if soil == "" {
		soil = "ordinary"
	}

	rows := []struct {
		description  string
		unit         string
		quantity     float64
		waste        float64
		materialCode string
	}{
		{"Site clearance and topsoil stripping", "sqm", floorArea * 1.2, 1.05, "site_clearance"},
		{fmt.Sprintf("Excavation in %s soil for foundations", soil), "m3", excavationVolume, 1.10, "excavation_soil"},
		{"Hardcore filling and compaction", "m3", foundationArea * 0.15, 1.10, "hardcore_fill"},
		{"Blinding concrete (1:3:6) 50mm thick", "sqm", foundationArea, std.Waste.Concrete, "blinding_concrete"},
		{"Foundation concrete (C25/30)", "m3", foundationArea * 0.25, std.Waste.Concrete, "foundation_concrete_c25"},
		{"Damp proof membrane (1000 gauge polythene)", "sqm", floorArea, 1.10, "dpm_1000_gauge"},
		{"Anti-termite treatment", "sqm", floorArea, 1.05, "anti_termite_treatment"},
		{"Ground floor slab concrete (C25/30) 150mm thick", "sqm", floorArea, std.Waste.Concrete, "ground_slab_concrete_c25"},
	}

	items := make([]BOQLineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, BOQLineItem{
			ItemNumber:    nums.next(SectionSubstructure),
			Category:      "Substructure",
			Description:   row.description,
			Unit:          row.unit,
			NetQuantity:   row.quantity,
			WasteFactor:   row.waste,
			GrossQuantity: row.quantity * row.waste,
			MaterialCode:  row.materialCode,
			Confidence:    0.85,
		})
	}
	return items
}

// superstructureItems emits Section C from the takeoff results. Each
// measured category with a recipe carries its constituent materials as a
// breakdown on the line itself.
func superstructureItems(std Standards, takeoff TakeoffSet, nums *itemNumberer) ([]BOQLineItem, error) {
	rows := []struct {
		result      TakeoffResult
		subCategory string
		description string
		recipe      string
	}{
		{takeoff.Walls, "Walls", "225mm thick hollow concrete blockwork in mortar (1:4)", "wall_per_sqm"},
		{takeoff.Columns, "Columns", "Reinforced concrete columns (C25/30) including formwork", "column_per_unit"},
		{takeoff.Beams, "Beams", "Reinforced concrete beams (C25/30) including formwork", "beam_per_meter"},
		{takeoff.Slabs, "Slabs", "Suspended reinforced concrete slab (C25/30) 150mm thick", "slab_per_sqm"},
		{takeoff.Doors, "Doors", "Supply and fix doors complete with frames and ironmongery", "door_per_unit"},
		{takeoff.Windows, "Windows", "Supply and fix steel casement windows complete", "window_per_unit"},
		{takeoff.Roof, "Roofing", "Timber roof structure with G28 GI sheet covering", "roof_per_sqm"},
	}

	var items []BOQLineItem
	for _, row := range rows {
		if row.result.GrossQuantity <= 0 {
			continue
		}

		recipe := std.Recipe(row.recipe)
		if recipe == nil {
			return nil, fmt.Errorf("no material recipe for %s", row.subCategory)
		}

		item := BOQLineItem{
			ItemNumber:    nums.next(SectionSuperstructure),
			Category:      "Superstructure",
			SubCategory:   row.subCategory,
			Description:   row.description,
			Unit:          row.result.Unit,
			NetQuantity:   row.result.NetQuantity,
			WasteFactor:   row.result.WasteFactor,
			GrossQuantity: row.result.GrossQuantity,
			AIExtracted:   true,
			Confidence:    row.result.Confidence,
			Remarks:       "Extracted from drawings",
		}
		if row.result.Assumed {
			item.Remarks = "Extracted from drawings, assumed dimensions"
			item.NeedsReview = true
		}
		if item.Confidence < std.ReviewThreshold {
			item.NeedsReview = true
		}

		item.MaterialsBreakdown = make(map[string]MaterialRequirement, len(recipe))
		for code, perUnit := range recipe {
			item.MaterialsBreakdown[code] = MaterialRequirement{
				QuantityPerUnit: perUnit,
				TotalQuantity:   perUnit * item.GrossQuantity,
				Unit:            MaterialUnit(code),
			}
		}

		items = append(items, item)
	}

	return items, nil
}

// MaterialUnit maps a material code to its standard unit of supply.
func MaterialUnit(code string) string {
	lower := strings.ToLower(code)
	for _, m := range []struct{ key, unit string }{
		{"cement", "bags"},
		{"sand", "lorry"},
		{"ballast", "lorry"},
		{"brick", "No."},
		{"bars", "pcs"},
		{"nails", "kg"},
		{"putty", "kg"},
		{"gum", "ft"},
		{"paint", "liter"},
		{"roll", "rolls"},
		{"sheet", "sqm"},
		{"door", "No."},
		{"window", "No."},
	} {
		if strings.Contains(lower, m.key) {
			return m.unit
		}
	}
	return "unit"
}

// MaterialDescription renders a material code as a readable description.
func MaterialDescription(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
