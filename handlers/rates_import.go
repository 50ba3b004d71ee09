package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/collections"
	"atitoqs/services"
)

// HandleRateImport validates an uploaded rate file (.csv or .xlsx) and, when
// the apply query parameter is set and every row is valid, upserts the rates
// by material code.
func HandleRateImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.String(http.StatusBadRequest, "Missing file upload")
		}
		defer file.Close()

		result, err := services.ValidateRateFile(file, header.Filename)
		if err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		apply := e.Request.URL.Query().Get("apply") != ""
		imported := 0
		if apply {
			if result.ErrorRows > 0 {
				return e.JSON(http.StatusUnprocessableEntity, map[string]any{
					"total_rows": result.TotalRows,
					"valid_rows": result.ValidRows,
					"error_rows": result.ErrorRows,
					"errors":     result.Errors,
					"imported":   0,
				})
			}
			if err := collections.UpsertRates(app, result.ParsedRates); err != nil {
				log.Printf("rate import: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to save imported rates")
			}
			imported = len(result.ParsedRates)
		}

		return e.JSON(http.StatusOK, map[string]any{
			"total_rows": result.TotalRows,
			"valid_rows": result.ValidRows,
			"error_rows": result.ErrorRows,
			"errors":     result.Errors,
			"imported":   imported,
		})
	}
}

// HandleRateImportErrorReport turns a validation error list back into a
// downloadable workbook.
func HandleRateImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req struct {
			Errors []services.ValidationError `json:"errors"`
		}
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if len(req.Errors) == 0 {
			return e.String(http.StatusBadRequest, "No errors to report")
		}

		report, err := services.GenerateErrorReport(req.Errors)
		if err != nil {
			log.Printf("rate import errors: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate error report")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="rate-import-errors.xlsx"`)
		e.Response.Write(report)
		return nil
	}
}

// HandleOptions returns the closed vocabularies a client needs to build
// project forms.
func HandleOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		std := services.MustStandards()
		return e.JSON(http.StatusOK, map[string]any{
			"counties":            std.Counties(),
			"soil_types":          services.SoilTypeOptions,
			"supported_diameters": std.SupportedDiameters(),
			"project_statuses":    []string{"draft", "processing", "active"},
		})
	}
}
