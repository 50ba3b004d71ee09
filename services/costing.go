package services

import (
	"fmt"
	"sort"
	"time"
)

// Catalog codes for reinforcement steel, priced per kg.
const (
	MaterialHighTensileSteel = "reinforcement_steel_high_tensile"
	MaterialMildSteel        = "reinforcement_steel_mild"
)

// MaterialRate is one entry of the material rate catalog.
type MaterialRate struct {
	Code        string  `json:"material_code"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Confidence  float64 `json:"confidence,omitempty"`
	Source      string  `json:"source,omitempty"`
	Region      string  `json:"region,omitempty"`
}

// RateCatalog resolves material codes to base rates. Implementations must be
// stable for the duration of one costing run.
type RateCatalog interface {
	Rate(code string) (MaterialRate, bool)
}

// MapCatalog is an in-memory RateCatalog.
type MapCatalog map[string]MaterialRate

func (c MapCatalog) Rate(code string) (MaterialRate, bool) {
	r, ok := c[code]
	return r, ok
}

// CostSummary is the full markup ladder of one costing run. Every
// intermediate figure is kept so reports can show the derivation.
type CostSummary struct {
	BOQCost           float64 `json:"boq_cost"`
	SteelCost         float64 `json:"steel_cost"`
	HighTensileCost   float64 `json:"high_tensile_cost"`
	MildSteelCost     float64 `json:"mild_steel_cost"`
	MaterialsSubtotal float64 `json:"materials_subtotal"`

	PreliminaryCost float64 `json:"preliminary_cost"`
	ProvisionalSum  float64 `json:"provisional_sum"`
	LaborOverheads  float64 `json:"labor_overheads"`

	SubtotalBeforeContingency float64 `json:"subtotal_before_contingency"`
	ContingencyPct            float64 `json:"contingency_percentage"`
	ContingencyAmount         float64 `json:"contingency_amount"`
	SubtotalBeforeVAT         float64 `json:"subtotal_before_vat"`
	VATPct                    float64 `json:"vat_percentage"`
	VATAmount                 float64 `json:"vat_amount"`
	GrandTotal                float64 `json:"grand_total"`

	CategoryTotals map[string]float64 `json:"category_breakdown"`

	County           string   `json:"county"`
	LocationFactor   float64  `json:"location_factor"`
	LocationFlagged  bool     `json:"location_factor_flagged"`
	MissingMaterials []string `json:"missing_materials,omitempty"`
	Currency         string   `json:"currency"`

	// GeneratedAt is stamped by the caller, never by the costing run, so
	// identical inputs always produce identical summaries.
	GeneratedAt time.Time `json:"date_generated"`
}

// costingRun carries the shared lookup state of one run.
type costingRun struct {
	catalog RateCatalog
	factor  float64
	missing map[string]bool
}

// materialRate resolves a catalog rate with the county location factor
// applied. Unknown codes resolve to 0.0 and are recorded for review.
func (r *costingRun) materialRate(code string) float64 {
	rate, ok := r.catalog.Rate(code)
	if !ok {
		r.missing[code] = true
		return 0.0
	}
	return rate.UnitPrice * r.factor
}

// CostProject prices the bill and the steel schedule, then applies the markup
// ladder. The input items are not mutated; priced copies are returned, so a
// rerun against the same inputs yields identical results.
func CostProject(std Standards, params ProjectParams, items []BOQLineItem, bbs BBSResult, catalog RateCatalog) (CostSummary, []BOQLineItem, error) {
	if catalog == nil {
		return CostSummary{}, nil, fmt.Errorf("rate catalog is required")
	}

	factor, known := std.LocationFactor(params.County)
	run := &costingRun{catalog: catalog, factor: factor, missing: map[string]bool{}}

	costed := make([]BOQLineItem, len(items))
	copy(costed, items)

	boqSubtotal := 0.0
	categoryTotals := map[string]float64{}

	for i := range costed {
		item := &costed[i]
		if item.GrossQuantity < 0 {
			return CostSummary{}, nil, fmt.Errorf("item %s: gross quantity must not be negative", item.ItemNumber)
		}
		if item.UnitRate < 0 {
			return CostSummary{}, nil, fmt.Errorf("item %s: unit rate must not be negative", item.ItemNumber)
		}

		switch {
		case item.CostedByMarkup:
			// Recovered through the preliminaries markup.
			item.UnitRate = 0.0
			item.TotalCost = 0.0

		case len(item.MaterialsBreakdown) > 0:
			cost := 0.0
			for code, req := range item.MaterialsBreakdown {
				cost += run.materialRate(code) * req.TotalQuantity
			}
			item.TotalCost = cost
			if item.GrossQuantity > 0 {
				item.UnitRate = cost / item.GrossQuantity
			}

		case item.MaterialCode != "":
			item.UnitRate = run.materialRate(item.MaterialCode)
			item.TotalCost = item.UnitRate * item.GrossQuantity

		case item.UnitRate > 0:
			item.TotalCost = item.UnitRate * item.GrossQuantity

		default:
			return CostSummary{}, nil, fmt.Errorf("item %s (%s): no rate, material code or breakdown to price from", item.ItemNumber, item.Description)
		}

		boqSubtotal += item.TotalCost
		categoryTotals[item.Category] += item.TotalCost
	}

	// Mark the lines that depend on a missing catalog entry.
	for i := range costed {
		item := &costed[i]
		if item.MaterialCode != "" && run.missing[item.MaterialCode] {
			item.NeedsReview = true
		}
		for code := range item.MaterialsBreakdown {
			if run.missing[code] {
				item.NeedsReview = true
			}
		}
	}

	highTensileRate := run.materialRate(MaterialHighTensileSteel)
	mildSteelRate := run.materialRate(MaterialMildSteel)
	highTensileCost := bbs.HighTensileKg * highTensileRate
	mildSteelCost := bbs.MildSteelKg * mildSteelRate
	steelCost := highTensileCost + mildSteelCost

	materialsSubtotal := boqSubtotal + steelCost

	preliminary := materialsSubtotal * std.Markups.Preliminary
	provisional := materialsSubtotal * std.Markups.ProvisionalSum
	labor := materialsSubtotal * std.Markups.LaborOverheads
	beforeContingency := materialsSubtotal + preliminary + provisional + labor

	contingencyPct := params.ContingencyPct
	contingency := beforeContingency * contingencyPct
	beforeVAT := beforeContingency + contingency

	vat := beforeVAT * std.Markups.VAT
	grandTotal := beforeVAT + vat

	summary := CostSummary{
		BOQCost:                   boqSubtotal,
		SteelCost:                 steelCost,
		HighTensileCost:           highTensileCost,
		MildSteelCost:             mildSteelCost,
		MaterialsSubtotal:         materialsSubtotal,
		PreliminaryCost:           preliminary,
		ProvisionalSum:            provisional,
		LaborOverheads:            labor,
		SubtotalBeforeContingency: beforeContingency,
		ContingencyPct:            contingencyPct,
		ContingencyAmount:         contingency,
		SubtotalBeforeVAT:         beforeVAT,
		VATPct:                    std.Markups.VAT,
		VATAmount:                 vat,
		GrandTotal:                grandTotal,
		CategoryTotals:            categoryTotals,
		County:                    params.County,
		LocationFactor:            factor,
		LocationFlagged:           !known,
		MissingMaterials:          sortedKeys(run.missing),
		Currency:                  "KES",
	}

	return summary, costed, nil
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
