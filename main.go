package main

import (
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"atitoqs/collections"
	"atitoqs/handlers"
	"atitoqs/services"
)

func main() {
	app := pocketbase.New()

	// Create collections, seed the rate catalog and run migrations on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.ResetStaleProcessing(app); err != nil {
			log.Printf("Warning: status migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Project CRUD ─────────────────────────────────────────
		se.Router.GET("/api/projects", handlers.HandleProjectList(app))
		se.Router.POST("/api/projects", handlers.HandleProjectCreate(app))
		se.Router.GET("/api/projects/{id}", handlers.HandleProjectGet(app))
		se.Router.PATCH("/api/projects/{id}", handlers.HandleProjectUpdate(app))
		se.Router.DELETE("/api/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Estimation pipeline ──────────────────────────────────
		se.Router.POST("/api/projects/{id}/process", handlers.HandleProjectProcess(app))

		// ── Run results ──────────────────────────────────────────
		se.Router.GET("/api/projects/{id}/takeoff", handlers.HandleProjectTakeoff(app))
		se.Router.GET("/api/projects/{id}/boq", handlers.HandleProjectBOQ(app))
		se.Router.GET("/api/projects/{id}/bbs", handlers.HandleProjectBBS(app))
		se.Router.GET("/api/projects/{id}/summary", handlers.HandleProjectSummary(app))

		// ── Exports ──────────────────────────────────────────────
		se.Router.GET("/api/projects/{id}/export/boq.xlsx", handlers.HandleBOQExportExcel(app))
		se.Router.GET("/api/projects/{id}/export/boq.pdf", handlers.HandleBOQExportPDF(app))
		se.Router.GET("/api/projects/{id}/export/bbs.xlsx", handlers.HandleBBSExportExcel(app))

		// ── Material rate catalog ────────────────────────────────
		se.Router.GET("/api/rates", handlers.HandleRateList(app))
		se.Router.PATCH("/api/rates/{code}", handlers.HandleRateUpdate(app))
		se.Router.POST("/api/rates/import", handlers.HandleRateImport(app))
		se.Router.POST("/api/rates/import/errors", handlers.HandleRateImportErrorReport(app))

		// ── Form vocabularies ────────────────────────────────────
		se.Router.GET("/api/options", handlers.HandleOptions(app))

		// Redirect home to the admin dashboard
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/_/")
		})

		return se.Next()
	})

	app.RootCmd.AddCommand(seedRatesCmd(app))

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// seedRatesCmd seeds the material rate catalog without starting the server.
// With --file it upserts rates from a scraper JSON export; without it the
// embedded Nairobi base catalog is seeded and existing materials are left
// untouched.
func seedRatesCmd(app *pocketbase.PocketBase) *cobra.Command {
	var ratesFile string

	cmd := &cobra.Command{
		Use:   "seed-rates",
		Short: "Create collections and seed the material rate catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Bootstrap(); err != nil {
				return err
			}
			collections.Setup(app)

			if ratesFile == "" {
				if err := collections.Seed(app); err != nil {
					return err
				}
				log.Println("Rate catalog seeded")
				return nil
			}

			data, err := os.ReadFile(ratesFile)
			if err != nil {
				return err
			}
			rates, err := services.ParseRatesJSON(data)
			if err != nil {
				return err
			}
			if err := collections.UpsertRates(app, rates); err != nil {
				return err
			}
			log.Printf("Imported %d rates from %s", len(rates), ratesFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&ratesFile, "file", "", "JSON file of material rates to upsert")
	return cmd
}
