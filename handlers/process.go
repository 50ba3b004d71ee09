package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// DetectionInput is one detected element as posted by the drawing analysis
// client. Bounding box coordinates are already scale-calibrated to meters.
type DetectionInput struct {
	Class      string     `json:"class"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
	Location   string     `json:"location"`
}

// ProcessRequest is the body of POST /api/projects/{id}/process.
type ProcessRequest struct {
	DetectionComplete bool             `json:"detection_complete"`
	Detections        []DetectionInput `json:"detections"`
}

func (r ProcessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DetectionComplete, validation.Required.Error("detection must be complete before processing")),
		validation.Field(&r.Detections, validation.Each(validation.By(func(value interface{}) error {
			d, _ := value.(DetectionInput)
			if _, err := services.ParseElementClass(d.Class); err != nil {
				return err
			}
			if d.Confidence < 0 || d.Confidence > 1 {
				return fmt.Errorf("confidence %.2f outside [0, 1]", d.Confidence)
			}
			return nil
		}))),
	)
}

func (r ProcessRequest) elements() ([]services.DetectedElement, error) {
	elements := make([]services.DetectedElement, 0, len(r.Detections))
	for _, d := range r.Detections {
		class, err := services.ParseElementClass(d.Class)
		if err != nil {
			return nil, err
		}
		elements = append(elements, services.DetectedElement{
			Class:      class,
			BBox:       d.BBox,
			Confidence: d.Confidence,
			Location:   d.Location,
		})
	}
	return elements, nil
}

// HandleProjectProcess runs the full estimation pipeline for a project:
// takeoff, bill of quantities, bar bending schedule and costing. Outputs of
// any previous run are replaced as a unit inside one transaction.
func HandleProjectProcess(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		project, err := mustFindProject(app, projectID)
		if err != nil {
			return e.String(http.StatusNotFound, "Project not found")
		}

		if project.GetString("status") == "processing" {
			return e.String(http.StatusConflict, "Project is already processing")
		}

		var req ProcessRequest
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if err := req.Validate(); err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		elements, err := req.elements()
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		std := services.MustStandards()
		params, err := projectParamsFromRecord(std, project)
		if err != nil {
			return e.String(http.StatusUnprocessableEntity, err.Error())
		}

		catalog, err := loadRateCatalog(app)
		if err != nil {
			log.Printf("process %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to load material rates")
		}

		project.Set("status", "processing")
		if err := app.Save(project); err != nil {
			log.Printf("process %s: could not mark processing: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to update project")
		}

		runID := uuid.NewString()
		summary, costedItems, bbs, takeoff, err := runEstimation(std, params, elements, catalog)
		if err == nil {
			summary.GeneratedAt = time.Now().UTC()
			err = app.RunInTransaction(func(txApp core.App) error {
				if err := deleteRunArtifacts(txApp, projectID); err != nil {
					return err
				}
				return saveRunArtifacts(txApp, projectID, runID, takeoff, costedItems, bbs, summary)
			})
		}
		if err != nil {
			project.Set("status", "draft")
			if saveErr := app.Save(project); saveErr != nil {
				log.Printf("process %s: could not reset status: %v", projectID, saveErr)
			}
			log.Printf("process %s: %v", projectID, err)
			return e.String(http.StatusUnprocessableEntity, fmt.Sprintf("Processing failed: %v", err))
		}

		project.Set("status", "active")
		project.Set("estimated_cost", summary.GrandTotal)
		project.Set("last_run_id", runID)
		if err := app.Save(project); err != nil {
			log.Printf("process %s: could not finalize project: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to update project")
		}

		return e.JSON(http.StatusOK, map[string]any{
			"run_id":       runID,
			"status":       "active",
			"boq_items":    len(costedItems),
			"bbs_items":    len(bbs.Bars),
			"grand_total":  summary.GrandTotal,
			"needs_review": countNeedsReview(costedItems),
			"cost_summary": summary,
		})
	}
}

// runEstimation chains the four engines. Any stage error aborts the run
// before persistence.
func runEstimation(std services.Standards, params services.ProjectParams, elements []services.DetectedElement, catalog services.RateCatalog) (services.CostSummary, []services.BOQLineItem, services.BBSResult, services.TakeoffSet, error) {
	takeoff, err := services.RunTakeoff(std, params, elements)
	if err != nil {
		return services.CostSummary{}, nil, services.BBSResult{}, services.TakeoffSet{}, fmt.Errorf("takeoff: %w", err)
	}

	items, err := services.GenerateBOQ(std, params, takeoff)
	if err != nil {
		return services.CostSummary{}, nil, services.BBSResult{}, services.TakeoffSet{}, fmt.Errorf("bill of quantities: %w", err)
	}

	bbs, err := services.GenerateBBS(std, params, services.AggregatesFromTakeoff(params, takeoff))
	if err != nil {
		return services.CostSummary{}, nil, services.BBSResult{}, services.TakeoffSet{}, fmt.Errorf("bar bending schedule: %w", err)
	}

	summary, costedItems, err := services.CostProject(std, params, items, bbs, catalog)
	if err != nil {
		return services.CostSummary{}, nil, services.BBSResult{}, services.TakeoffSet{}, fmt.Errorf("costing: %w", err)
	}

	return summary, costedItems, bbs, takeoff, nil
}

func countNeedsReview(items []services.BOQLineItem) int {
	n := 0
	for _, item := range items {
		if item.NeedsReview {
			n++
		}
	}
	return n
}
