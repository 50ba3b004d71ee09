package handlers

import (
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ProjectRequest is the body of project create and update calls. Structural
// dimensions are optional; zeros fall back to the standards defaults during
// processing.
type ProjectRequest struct {
	Name           string  `json:"name"`
	ClientName     string  `json:"client_name"`
	County         string  `json:"county"`
	Location       string  `json:"location"`
	SoilType       string  `json:"soil_type"`
	FloorAreaSqm   float64 `json:"floor_area_sqm"`
	FloorCount     int     `json:"floor_count"`
	ContingencyPct float64 `json:"contingency_percentage"`
	WallHeightM    float64 `json:"wall_height_m"`
	ColumnSizeMM   float64 `json:"column_size_mm"`
	FloorHeightMM  float64 `json:"floor_height_mm"`
	BeamWidthMM    float64 `json:"beam_width_mm"`
	BeamDepthMM    float64 `json:"beam_depth_mm"`
	SlabThicknessM float64 `json:"slab_thickness_m"`
}

func (r ProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.FloorAreaSqm, validation.Min(0.0)),
		validation.Field(&r.FloorCount, validation.Min(0)),
		validation.Field(&r.ContingencyPct, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&r.WallHeightM, validation.Min(0.0)),
		validation.Field(&r.ColumnSizeMM, validation.Min(0.0)),
		validation.Field(&r.FloorHeightMM, validation.Min(0.0)),
		validation.Field(&r.BeamWidthMM, validation.Min(0.0)),
		validation.Field(&r.BeamDepthMM, validation.Min(0.0)),
		validation.Field(&r.SlabThicknessM, validation.Min(0.0)),
	)
}

func (r ProjectRequest) apply(record *core.Record) {
	record.Set("name", r.Name)
	record.Set("client_name", r.ClientName)
	record.Set("county", r.County)
	record.Set("location", r.Location)
	record.Set("soil_type", r.SoilType)
	record.Set("floor_area_sqm", r.FloorAreaSqm)
	record.Set("floor_count", r.FloorCount)
	record.Set("contingency_percentage", r.ContingencyPct)
	record.Set("wall_height_m", r.WallHeightM)
	record.Set("column_size_mm", r.ColumnSizeMM)
	record.Set("floor_height_mm", r.FloorHeightMM)
	record.Set("beam_width_mm", r.BeamWidthMM)
	record.Set("beam_depth_mm", r.BeamDepthMM)
	record.Set("slab_thickness_m", r.SlabThicknessM)
}

func projectJSON(record *core.Record) map[string]any {
	return map[string]any{
		"id":                     record.Id,
		"name":                   record.GetString("name"),
		"client_name":            record.GetString("client_name"),
		"county":                 record.GetString("county"),
		"location":               record.GetString("location"),
		"soil_type":              record.GetString("soil_type"),
		"floor_area_sqm":         record.GetFloat("floor_area_sqm"),
		"floor_count":            record.GetInt("floor_count"),
		"contingency_percentage": record.GetFloat("contingency_percentage"),
		"wall_height_m":          record.GetFloat("wall_height_m"),
		"column_size_mm":         record.GetFloat("column_size_mm"),
		"floor_height_mm":        record.GetFloat("floor_height_mm"),
		"beam_width_mm":          record.GetFloat("beam_width_mm"),
		"beam_depth_mm":          record.GetFloat("beam_depth_mm"),
		"slab_thickness_m":       record.GetFloat("slab_thickness_m"),
		"status":                 record.GetString("status"),
		"estimated_cost":         record.GetFloat("estimated_cost"),
		"last_run_id":            record.GetString("last_run_id"),
		"created":                record.GetString("created"),
		"updated":                record.GetString("updated"),
	}
}

// HandleProjectCreate creates a draft project.
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req ProjectRequest
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if err := req.Validate(); err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project create: %v", err)
			return e.String(http.StatusInternalServerError, "Projects collection not found")
		}

		record := core.NewRecord(col)
		req.apply(record)
		record.Set("status", "draft")
		if err := app.Save(record); err != nil {
			log.Printf("project create: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to create project")
		}

		return e.JSON(http.StatusCreated, projectJSON(record))
	}
}

// HandleProjectUpdate edits a draft or active project. Processing projects
// are locked until the run finishes.
func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		record, err := mustFindProject(app, projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}
		if record.GetString("status") == "processing" {
			return e.String(http.StatusConflict, "Project is processing")
		}

		var req ProjectRequest
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if err := req.Validate(); err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		req.apply(record)
		if err := app.Save(record); err != nil {
			log.Printf("project update %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to update project")
		}

		return e.JSON(http.StatusOK, projectJSON(record))
	}
}

// HandleProjectList lists projects, newest first.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project list: %v", err)
			return e.String(http.StatusInternalServerError, "Projects collection not found")
		}

		records, err := app.FindRecordsByFilter(col, "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("project list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to list projects")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, projectJSON(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"projects": out})
	}
}

// HandleProjectGet returns one project.
func HandleProjectGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		record, err := mustFindProject(app, projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}
		return e.JSON(http.StatusOK, projectJSON(record))
	}
}

// HandleProjectDelete removes a project. Derived records cascade through the
// relation fields.
func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		record, err := mustFindProject(app, projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}
		if record.GetString("status") == "processing" {
			return e.String(http.StatusConflict, "Project is processing")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("project delete %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to delete project")
		}
		return e.String(http.StatusOK, "")
	}
}
