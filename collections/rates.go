package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"atitoqs/services"
)

// UpsertRates writes validated rates into the materials collection, matching
// on material code. All rows land or none do.
func UpsertRates(app core.App, rates []services.MaterialRate) error {
	return app.RunInTransaction(func(txApp core.App) error {
		col, err := txApp.FindCollectionByNameOrId("materials")
		if err != nil {
			return fmt.Errorf("materials collection not found: %w", err)
		}

		for _, rate := range rates {
			existing, err := txApp.FindRecordsByFilter(col, "material_code = {:code}", "", 1, 0, map[string]any{"code": rate.Code})
			if err != nil {
				return fmt.Errorf("could not query material %q: %w", rate.Code, err)
			}

			var record *core.Record
			if len(existing) > 0 {
				record = existing[0]
			} else {
				record = core.NewRecord(col)
				record.Set("material_code", rate.Code)
			}
			record.Set("description", rate.Description)
			record.Set("unit", rate.Unit)
			record.Set("unit_price", rate.UnitPrice)
			if rate.Confidence > 0 {
				record.Set("confidence_score", rate.Confidence)
			}
			if rate.Source != "" {
				record.Set("source", rate.Source)
			}
			if rate.Region != "" {
				record.Set("region", rate.Region)
			}
			if err := txApp.Save(record); err != nil {
				return fmt.Errorf("could not save material %q: %w", rate.Code, err)
			}
		}
		return nil
	})
}
