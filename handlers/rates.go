package handlers

import (
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// RateUpdateRequest is the body of PATCH /api/rates/{code}. Only the price
// and its provenance change; the code and unit are fixed at seed time.
type RateUpdateRequest struct {
	UnitPrice  float64 `json:"unit_price"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Region     string  `json:"region"`
}

func (r RateUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UnitPrice, validation.Required, validation.Min(0.0)),
		validation.Field(&r.Confidence, validation.Min(0.0), validation.Max(1.0)),
	)
}

// HandleRateList returns the material rate catalog, optionally filtered by
// region via the ?region= query parameter.
func HandleRateList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("materials")
		if err != nil {
			log.Printf("rate list: %v", err)
			return e.String(http.StatusInternalServerError, "Materials collection not found")
		}

		filter := "id != ''"
		params := map[string]any{}
		if region := e.Request.URL.Query().Get("region"); region != "" {
			filter = "region = {:region}"
			params["region"] = region
		}

		records, err := app.FindRecordsByFilter(col, filter, "material_code", 0, 0, params)
		if err != nil {
			log.Printf("rate list: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to list material rates")
		}

		rates := make([]services.MaterialRate, 0, len(records))
		for _, r := range records {
			rates = append(rates, materialRateFromRecord(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"rates": rates})
	}
}

// HandleRateUpdate overrides the unit price of one material rate.
func HandleRateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		code := e.Request.PathValue("code")
		if code == "" {
			return e.String(http.StatusBadRequest, "Missing material code")
		}

		col, err := app.FindCollectionByNameOrId("materials")
		if err != nil {
			log.Printf("rate update: %v", err)
			return e.String(http.StatusInternalServerError, "Materials collection not found")
		}

		records, err := app.FindRecordsByFilter(col, "material_code = {:code}", "", 1, 0, map[string]any{"code": code})
		if err != nil {
			log.Printf("rate update %s: %v", code, err)
			return e.String(http.StatusInternalServerError, "Failed to query material rates")
		}
		if len(records) == 0 {
			return e.String(http.StatusNotFound, "Material rate not found")
		}

		var req RateUpdateRequest
		if err := e.BindBody(&req); err != nil {
			return e.String(http.StatusBadRequest, "Invalid request body")
		}
		if err := req.Validate(); err != nil {
			return e.String(http.StatusBadRequest, err.Error())
		}

		record := records[0]
		record.Set("unit_price", req.UnitPrice)
		if req.Confidence > 0 {
			record.Set("confidence_score", req.Confidence)
		}
		if req.Source != "" {
			record.Set("source", req.Source)
		}
		if req.Region != "" {
			record.Set("region", req.Region)
		}
		if err := app.Save(record); err != nil {
			log.Printf("rate update %s: %v", code, err)
			return e.String(http.StatusInternalServerError, "Failed to update material rate")
		}

		return e.JSON(http.StatusOK, materialRateFromRecord(record))
	}
}
