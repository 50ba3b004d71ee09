package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// buildBOQExportData loads a project's persisted bill and cost summary into
// the exporter input shape.
func buildBOQExportData(app *pocketbase.PocketBase, projectID string) (services.BOQExportData, error) {
	project, err := mustFindProject(app, projectID)
	if err != nil {
		return services.BOQExportData{}, fmt.Errorf("project not found: %w", err)
	}

	items, err := findProjectBOQItems(app, projectID)
	if err != nil {
		return services.BOQExportData{}, err
	}

	summary, err := findProjectSummary(app, projectID)
	if err != nil {
		return services.BOQExportData{}, err
	}
	if summary == nil {
		return services.BOQExportData{}, fmt.Errorf("project %s has no cost summary", projectID)
	}

	return services.NewBOQExportData(project.GetString("name"), items, *summary), nil
}

// buildBBSExportData loads a project's persisted schedule into the exporter
// input shape, recomputing the per-type totals from the stored lines.
func buildBBSExportData(app *pocketbase.PocketBase, projectID string) (services.BBSExportData, error) {
	project, err := mustFindProject(app, projectID)
	if err != nil {
		return services.BBSExportData{}, fmt.Errorf("project not found: %w", err)
	}

	bars, err := findProjectBars(app, projectID)
	if err != nil {
		return services.BBSExportData{}, err
	}
	if len(bars) == 0 {
		return services.BBSExportData{}, fmt.Errorf("project %s has no schedule lines", projectID)
	}

	result := services.BBSResult{Bars: bars}
	for _, bar := range bars {
		result.TotalSteelKg += bar.TotalWeightKg
		switch bar.BarType {
		case services.BarHighTensile:
			result.HighTensileKg += bar.TotalWeightKg
		case services.BarMildSteel:
			result.MildSteelKg += bar.TotalWeightKg
		}
	}

	return services.NewBBSExportData(project.GetString("name"), result, time.Now()), nil
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleBOQExportExcel generates and downloads the Excel bill of quantities.
func HandleBOQExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		data, err := buildBOQExportData(app, projectID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return e.String(http.StatusNotFound, "Bill of quantities not available")
		}

		xlsxBytes, err := services.GenerateBOQExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("BOQ_%s_%d.xlsx", sanitizeFilename(data.ProjectName), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleBOQExportPDF generates and downloads the PDF bill of quantities.
func HandleBOQExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		data, err := buildBOQExportData(app, projectID)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return e.String(http.StatusNotFound, "Bill of quantities not available")
		}

		pdfBytes, err := services.GenerateBOQPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("BOQ_%s_%d.pdf", sanitizeFilename(data.ProjectName), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleBBSExportExcel generates and downloads the Excel bar bending
// schedule.
func HandleBBSExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return e.String(http.StatusBadRequest, "Missing project ID")
		}

		data, err := buildBBSExportData(app, projectID)
		if err != nil {
			log.Printf("bbs_export_excel: %v", err)
			return e.String(http.StatusNotFound, "Bar bending schedule not available")
		}

		xlsxBytes, err := services.GenerateBBSExcel(data)
		if err != nil {
			log.Printf("bbs_export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("BBS_%s_%d.xlsx", sanitizeFilename(data.ProjectName), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
