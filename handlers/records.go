package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// projectParamsFromRecord builds validated engine parameters from a project
// record. Structural fields left at zero fall back to the standards defaults
// inside NewProjectParams and are tagged assumed.
func projectParamsFromRecord(std services.Standards, record *core.Record) (services.ProjectParams, error) {
	return services.NewProjectParams(std, services.ProjectParams{
		ProjectID:      record.Id,
		Name:           record.GetString("name"),
		County:         record.GetString("county"),
		SoilType:       record.GetString("soil_type"),
		FloorAreaSqm:   record.GetFloat("floor_area_sqm"),
		FloorCount:     record.GetInt("floor_count"),
		ContingencyPct: record.GetFloat("contingency_percentage"),
		WallHeightM:    services.Authoritative(record.GetFloat("wall_height_m")),
		ColumnSizeMM:   services.Authoritative(record.GetFloat("column_size_mm")),
		FloorHeightMM:  services.Authoritative(record.GetFloat("floor_height_mm")),
		BeamWidthMM:    services.Authoritative(record.GetFloat("beam_width_mm")),
		BeamDepthMM:    services.Authoritative(record.GetFloat("beam_depth_mm")),
		SlabThicknessM: services.Authoritative(record.GetFloat("slab_thickness_m")),
	})
}

// loadRateCatalog reads the whole materials collection into an in-memory
// catalog so one costing run prices every line against the same rates.
func loadRateCatalog(app core.App) (services.MapCatalog, error) {
	materialsCol, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		return nil, fmt.Errorf("materials collection not found: %w", err)
	}

	records, err := app.FindAllRecords(materialsCol)
	if err != nil {
		return nil, fmt.Errorf("could not load material rates: %w", err)
	}

	catalog := make(services.MapCatalog, len(records))
	for _, r := range records {
		code := r.GetString("material_code")
		catalog[code] = services.MaterialRate{
			Code:        code,
			Description: r.GetString("description"),
			Unit:        r.GetString("unit"),
			UnitPrice:   r.GetFloat("unit_price"),
			Source:      r.GetString("source"),
			Region:      r.GetString("region"),
		}
	}
	return catalog, nil
}

// materialRateFromRecord maps a materials record to its API shape.
func materialRateFromRecord(r *core.Record) services.MaterialRate {
	return services.MaterialRate{
		Code:        r.GetString("material_code"),
		Description: r.GetString("description"),
		Unit:        r.GetString("unit"),
		UnitPrice:   r.GetFloat("unit_price"),
		Confidence:  r.GetFloat("confidence_score"),
		Source:      r.GetString("source"),
		Region:      r.GetString("region"),
	}
}

// boqItemFromRecord maps a persisted bill line back to its engine shape.
func boqItemFromRecord(r *core.Record) (services.BOQLineItem, error) {
	item := services.BOQLineItem{
		ItemNumber:     r.GetString("item_number"),
		Category:       r.GetString("category"),
		SubCategory:    r.GetString("sub_category"),
		Description:    r.GetString("description"),
		Unit:           r.GetString("unit"),
		NetQuantity:    r.GetFloat("net_quantity"),
		WasteFactor:    r.GetFloat("waste_factor"),
		GrossQuantity:  r.GetFloat("gross_quantity"),
		MaterialCode:   r.GetString("material_code"),
		UnitRate:       r.GetFloat("unit_rate"),
		TotalCost:      r.GetFloat("total_cost"),
		CostedByMarkup: r.GetBool("costed_by_markup"),
		AIExtracted:    r.GetBool("ai_extracted"),
		Confidence:     r.GetFloat("confidence_score"),
		NeedsReview:    r.GetBool("needs_review"),
		Remarks:        r.GetString("remarks"),
	}

	if raw := r.GetString("materials_breakdown"); raw != "" && raw != "null" {
		if err := r.UnmarshalJSONField("materials_breakdown", &item.MaterialsBreakdown); err != nil {
			return item, fmt.Errorf("item %s: bad materials breakdown: %w", item.ItemNumber, err)
		}
	}
	return item, nil
}

// barSpecFromRecord maps a persisted schedule line back to its engine shape.
func barSpecFromRecord(r *core.Record) (services.BarSpec, error) {
	bar := services.BarSpec{
		BarMark:          r.GetString("bar_mark"),
		MemberType:       services.MemberType(r.GetString("member_type")),
		Location:         r.GetString("location"),
		DiameterMM:       r.GetInt("bar_diameter_mm"),
		BarType:          services.BarType(r.GetString("bar_type")),
		ShapeCode:        r.GetString("shape_code"),
		TotalLengthMM:    r.GetFloat("total_length_mm"),
		BarCount:         r.GetInt("bar_count"),
		UnitWeightKgPerM: r.GetFloat("unit_weight_kg_per_m"),
		TotalWeightKg:    r.GetFloat("total_weight_kg"),
		Remarks:          r.GetString("remarks"),
	}

	if raw := r.GetString("dimensions"); raw != "" && raw != "null" {
		var dims struct {
			A float64 `json:"a"`
			B float64 `json:"b"`
			C float64 `json:"c"`
			D float64 `json:"d"`
			E float64 `json:"e"`
		}
		if err := r.UnmarshalJSONField("dimensions", &dims); err != nil {
			return bar, fmt.Errorf("bar %s: bad dimensions: %w", bar.BarMark, err)
		}
		bar.A, bar.B, bar.C, bar.D, bar.E = dims.A, dims.B, dims.C, dims.D, dims.E
	}
	return bar, nil
}

// deleteRunArtifacts removes every derived record of a project so a rerun
// replaces them as a unit.
func deleteRunArtifacts(txApp core.App, projectID string) error {
	for _, name := range []string{"takeoff_results", "boq_items", "bbs_items", "cost_summaries"} {
		col, err := txApp.FindCollectionByNameOrId(name)
		if err != nil {
			return fmt.Errorf("%s collection not found: %w", name, err)
		}
		records, err := txApp.FindRecordsByFilter(col, "project = {:projectId}", "", 0, 0, map[string]any{"projectId": projectID})
		if err != nil {
			return fmt.Errorf("could not query %s: %w", name, err)
		}
		for _, r := range records {
			if err := txApp.Delete(r); err != nil {
				return fmt.Errorf("could not delete %s record: %w", name, err)
			}
		}
	}
	return nil
}

// saveRunArtifacts persists the outputs of one processing run. Caller wraps
// it in a transaction together with deleteRunArtifacts.
func saveRunArtifacts(txApp core.App, projectID, runID string, takeoff services.TakeoffSet, items []services.BOQLineItem, bbs services.BBSResult, summary services.CostSummary) error {
	takeoffCol, err := txApp.FindCollectionByNameOrId("takeoff_results")
	if err != nil {
		return fmt.Errorf("takeoff_results collection not found: %w", err)
	}
	for _, result := range takeoff.Results() {
		record := core.NewRecord(takeoffCol)
		record.Set("project", projectID)
		record.Set("run_id", runID)
		record.Set("element_type", result.ElementType)
		record.Set("unit", result.Unit)
		record.Set("net_quantity", result.NetQuantity)
		record.Set("waste_factor", result.WasteFactor)
		record.Set("gross_quantity", result.GrossQuantity)
		record.Set("count", result.Count)
		record.Set("net_volume_m3", result.NetVolumeM3)
		record.Set("gross_volume_m3", result.GrossVolumeM3)
		record.Set("details", result.Details)
		record.Set("assumed", result.Assumed)
		record.Set("confidence_score", result.Confidence)
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("could not save takeoff result %s: %w", result.ElementType, err)
		}
	}

	boqCol, err := txApp.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return fmt.Errorf("boq_items collection not found: %w", err)
	}
	for i, item := range items {
		record := core.NewRecord(boqCol)
		record.Set("project", projectID)
		record.Set("run_id", runID)
		record.Set("sort_order", i+1)
		record.Set("item_number", item.ItemNumber)
		record.Set("category", item.Category)
		record.Set("sub_category", item.SubCategory)
		record.Set("description", item.Description)
		record.Set("unit", item.Unit)
		record.Set("net_quantity", item.NetQuantity)
		record.Set("waste_factor", item.WasteFactor)
		record.Set("gross_quantity", item.GrossQuantity)
		record.Set("material_code", item.MaterialCode)
		record.Set("unit_rate", item.UnitRate)
		record.Set("total_cost", item.TotalCost)
		record.Set("materials_breakdown", item.MaterialsBreakdown)
		record.Set("costed_by_markup", item.CostedByMarkup)
		record.Set("ai_extracted", item.AIExtracted)
		record.Set("confidence_score", item.Confidence)
		record.Set("needs_review", item.NeedsReview)
		record.Set("remarks", item.Remarks)
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("could not save bill item %s: %w", item.ItemNumber, err)
		}
	}

	bbsCol, err := txApp.FindCollectionByNameOrId("bbs_items")
	if err != nil {
		return fmt.Errorf("bbs_items collection not found: %w", err)
	}
	for i, bar := range bbs.Bars {
		record := core.NewRecord(bbsCol)
		record.Set("project", projectID)
		record.Set("run_id", runID)
		record.Set("sort_order", i+1)
		record.Set("bar_mark", bar.BarMark)
		record.Set("member_type", string(bar.MemberType))
		record.Set("location", bar.Location)
		record.Set("bar_diameter_mm", bar.DiameterMM)
		record.Set("bar_type", string(bar.BarType))
		record.Set("shape_code", bar.ShapeCode)
		record.Set("dimensions", map[string]float64{"a": bar.A, "b": bar.B, "c": bar.C, "d": bar.D, "e": bar.E})
		record.Set("total_length_mm", bar.TotalLengthMM)
		record.Set("bar_count", bar.BarCount)
		record.Set("unit_weight_kg_per_m", bar.UnitWeightKgPerM)
		record.Set("total_weight_kg", bar.TotalWeightKg)
		record.Set("remarks", bar.Remarks)
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("could not save schedule line %s: %w", bar.BarMark, err)
		}
	}

	summaryCol, err := txApp.FindCollectionByNameOrId("cost_summaries")
	if err != nil {
		return fmt.Errorf("cost_summaries collection not found: %w", err)
	}
	record := core.NewRecord(summaryCol)
	record.Set("project", projectID)
	record.Set("run_id", runID)
	record.Set("boq_cost", summary.BOQCost)
	record.Set("steel_cost", summary.SteelCost)
	record.Set("materials_subtotal", summary.MaterialsSubtotal)
	record.Set("preliminary_cost", summary.PreliminaryCost)
	record.Set("provisional_sum", summary.ProvisionalSum)
	record.Set("labor_overheads", summary.LaborOverheads)
	record.Set("subtotal_before_contingency", summary.SubtotalBeforeContingency)
	record.Set("contingency_percentage", summary.ContingencyPct)
	record.Set("contingency_amount", summary.ContingencyAmount)
	record.Set("subtotal_before_vat", summary.SubtotalBeforeVAT)
	record.Set("vat_percentage", summary.VATPct)
	record.Set("vat_amount", summary.VATAmount)
	record.Set("grand_total", summary.GrandTotal)
	record.Set("category_breakdown", summary.CategoryTotals)
	record.Set("county", summary.County)
	record.Set("location_factor", summary.LocationFactor)
	record.Set("location_factor_flagged", summary.LocationFlagged)
	record.Set("missing_materials", summary.MissingMaterials)
	record.Set("currency", summary.Currency)
	if err := txApp.Save(record); err != nil {
		return fmt.Errorf("could not save cost summary: %w", err)
	}

	return nil
}

// costSummaryFromRecord maps a persisted summary back to its engine shape.
func costSummaryFromRecord(r *core.Record) (services.CostSummary, error) {
	summary := services.CostSummary{
		BOQCost:                   r.GetFloat("boq_cost"),
		SteelCost:                 r.GetFloat("steel_cost"),
		MaterialsSubtotal:         r.GetFloat("materials_subtotal"),
		PreliminaryCost:           r.GetFloat("preliminary_cost"),
		ProvisionalSum:            r.GetFloat("provisional_sum"),
		LaborOverheads:            r.GetFloat("labor_overheads"),
		SubtotalBeforeContingency: r.GetFloat("subtotal_before_contingency"),
		ContingencyPct:            r.GetFloat("contingency_percentage"),
		ContingencyAmount:         r.GetFloat("contingency_amount"),
		SubtotalBeforeVAT:         r.GetFloat("subtotal_before_vat"),
		VATPct:                    r.GetFloat("vat_percentage"),
		VATAmount:                 r.GetFloat("vat_amount"),
		GrandTotal:                r.GetFloat("grand_total"),
		County:                    r.GetString("county"),
		LocationFactor:            r.GetFloat("location_factor"),
		LocationFlagged:           r.GetBool("location_factor_flagged"),
		Currency:                  r.GetString("currency"),
		GeneratedAt:               r.GetDateTime("created").Time(),
	}

	if raw := r.GetString("category_breakdown"); raw != "" && raw != "null" {
		if err := r.UnmarshalJSONField("category_breakdown", &summary.CategoryTotals); err != nil {
			return summary, fmt.Errorf("bad category breakdown: %w", err)
		}
	}
	if raw := r.GetString("missing_materials"); raw != "" && raw != "null" {
		if err := r.UnmarshalJSONField("missing_materials", &summary.MissingMaterials); err != nil {
			return summary, fmt.Errorf("bad missing materials: %w", err)
		}
	}
	return summary, nil
}

// findProjectBOQItems loads the persisted bill of a project in generation
// order.
func findProjectBOQItems(app core.App, projectID string) ([]services.BOQLineItem, error) {
	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		return nil, fmt.Errorf("boq_items collection not found: %w", err)
	}
	records, err := app.FindRecordsByFilter(col, "project = {:projectId}", "sort_order", 0, 0, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("could not query bill items: %w", err)
	}

	items := make([]services.BOQLineItem, 0, len(records))
	for _, r := range records {
		item, err := boqItemFromRecord(r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// findProjectBars loads the persisted schedule of a project in generation
// order.
func findProjectBars(app core.App, projectID string) ([]services.BarSpec, error) {
	col, err := app.FindCollectionByNameOrId("bbs_items")
	if err != nil {
		return nil, fmt.Errorf("bbs_items collection not found: %w", err)
	}
	records, err := app.FindRecordsByFilter(col, "project = {:projectId}", "sort_order", 0, 0, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("could not query schedule lines: %w", err)
	}

	bars := make([]services.BarSpec, 0, len(records))
	for _, r := range records {
		bar, err := barSpecFromRecord(r)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// findProjectSummary loads the persisted cost summary of a project, nil when
// the project has not been processed yet.
func findProjectSummary(app core.App, projectID string) (*services.CostSummary, error) {
	col, err := app.FindCollectionByNameOrId("cost_summaries")
	if err != nil {
		return nil, fmt.Errorf("cost_summaries collection not found: %w", err)
	}
	records, err := app.FindRecordsByFilter(col, "project = {:projectId}", "-created", 1, 0, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("could not query cost summaries: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	summary, err := costSummaryFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// mustFindProject resolves a project record by id.
func mustFindProject(app *pocketbase.PocketBase, id string) (*core.Record, error) {
	return app.FindRecordById("projects", id)
}
