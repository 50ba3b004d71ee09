package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// HandleProjectBOQ returns the persisted bill of quantities of a project.
func HandleProjectBOQ(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, ok, err := resolveProject(app, e)
		if !ok {
			return err
		}

		items, err := findProjectBOQItems(app, project.Id)
		if err != nil {
			log.Printf("boq %s: %v", project.Id, err)
			return e.String(http.StatusInternalServerError, "Failed to load bill items")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"project_id": project.Id,
			"run_id":     project.GetString("last_run_id"),
			"items":      items,
		})
	}
}

// HandleProjectBBS returns the persisted bar bending schedule of a project.
func HandleProjectBBS(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, ok, err := resolveProject(app, e)
		if !ok {
			return err
		}

		bars, err := findProjectBars(app, project.Id)
		if err != nil {
			log.Printf("bbs %s: %v", project.Id, err)
			return e.String(http.StatusInternalServerError, "Failed to load schedule lines")
		}

		var total, highTensile, mildSteel float64
		for _, bar := range bars {
			total += bar.TotalWeightKg
			switch bar.BarType {
			case services.BarHighTensile:
				highTensile += bar.TotalWeightKg
			case services.BarMildSteel:
				mildSteel += bar.TotalWeightKg
			}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"project_id":      project.Id,
			"run_id":          project.GetString("last_run_id"),
			"bars":            bars,
			"total_steel_kg":  total,
			"high_tensile_kg": highTensile,
			"mild_steel_kg":   mildSteel,
		})
	}
}

// HandleProjectTakeoff returns the persisted takeoff results of a project.
func HandleProjectTakeoff(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, ok, err := resolveProject(app, e)
		if !ok {
			return err
		}

		col, err := app.FindCollectionByNameOrId("takeoff_results")
		if err != nil {
			log.Printf("takeoff %s: %v", project.Id, err)
			return e.String(http.StatusInternalServerError, "Takeoff collection not found")
		}
		records, err := app.FindRecordsByFilter(col, "project = {:projectId}", "element_type", 0, 0, map[string]any{"projectId": project.Id})
		if err != nil {
			log.Printf("takeoff %s: %v", project.Id, err)
			return e.String(http.StatusInternalServerError, "Failed to load takeoff results")
		}

		results := make([]map[string]any, 0, len(records))
		for _, r := range records {
			row := map[string]any{
				"element_type":     r.GetString("element_type"),
				"unit":             r.GetString("unit"),
				"net_quantity":     r.GetFloat("net_quantity"),
				"waste_factor":     r.GetFloat("waste_factor"),
				"gross_quantity":   r.GetFloat("gross_quantity"),
				"count":            r.GetInt("count"),
				"net_volume_m3":    r.GetFloat("net_volume_m3"),
				"gross_volume_m3":  r.GetFloat("gross_volume_m3"),
				"assumed":          r.GetBool("assumed"),
				"confidence_score": r.GetFloat("confidence_score"),
			}
			var details []services.Measurement
			if raw := r.GetString("details"); raw != "" && raw != "null" {
				if err := r.UnmarshalJSONField("details", &details); err == nil {
					row["details"] = details
				}
			}
			results = append(results, row)
		}

		return e.JSON(http.StatusOK, map[string]any{
			"project_id": project.Id,
			"run_id":     project.GetString("last_run_id"),
			"results":    results,
		})
	}
}

// HandleProjectSummary returns the persisted cost summary of a project.
func HandleProjectSummary(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, ok, err := resolveProject(app, e)
		if !ok {
			return err
		}

		summary, err := findProjectSummary(app, project.Id)
		if err != nil {
			log.Printf("summary %s: %v", project.Id, err)
			return e.String(http.StatusInternalServerError, "Failed to load cost summary")
		}
		if summary == nil {
			return e.String(http.StatusNotFound, "Project has not been processed yet")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"project_id":        project.Id,
			"run_id":            project.GetString("last_run_id"),
			"summary":           summary,
			"grand_total_label": services.FormatKES(summary.GrandTotal),
		})
	}
}

// resolveProject reads the path project ID and loads the record. On failure
// the returned error is the already-written response.
func resolveProject(app *pocketbase.PocketBase, e *core.RequestEvent) (*core.Record, bool, error) {
	projectID := e.Request.PathValue("id")
	if projectID == "" {
		return nil, false, e.String(http.StatusBadRequest, "Missing project ID")
	}
	project, err := mustFindProject(app, projectID)
	if err != nil {
		return nil, false, e.String(http.StatusNotFound, "Project not found")
	}
	return project, true, nil
}
