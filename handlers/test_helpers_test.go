package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"atitoqs/collections"
	"atitoqs/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// jsonBody marshals v into a request body reader.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return bytes.NewReader(data)
}

// seededTestApp creates a test app with the full Nairobi rate catalog so
// processing runs resolve every material.
func seededTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("failed to seed test app: %v", err)
	}
	return app
}

// sampleProcessRequest is a small but complete detection feed: one wall run,
// two columns and a door.
func sampleProcessRequest() ProcessRequest {
	return ProcessRequest{
		DetectionComplete: true,
		Detections: []DetectionInput{
			{Class: "wall", BBox: [4]float64{0, 0, 12, 0.2}, Confidence: 0.92, Location: "North wall"},
			{Class: "column", BBox: [4]float64{0, 0, 0.3, 0.3}, Confidence: 0.88, Location: "C1"},
			{Class: "column", BBox: [4]float64{5, 0, 5.3, 0.3}, Confidence: 0.9, Location: "C2"},
			{Class: "door", BBox: [4]float64{2, 0, 2.9, 0.1}, Confidence: 0.95, Location: "D1"},
		},
	}
}

// processTestProject runs the full pipeline for a freshly created project and
// returns its record reloaded.
func processTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	project := testhelpers.CreateTestProject(t, app, name, "Nairobi")

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("process handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d, body: %s", rec.Code, rec.Body.String())
	}

	reloaded, err := app.FindRecordById("projects", project.Id)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	return reloaded
}

// countProjectRecords counts records of a collection belonging to a project.
func countProjectRecords(t *testing.T, app *pocketbase.PocketBase, collection, projectID string) int {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}
	records, err := app.FindRecordsByFilter(col, "project = {:projectId}", "", 0, 0, map[string]any{"projectId": projectID})
	if err != nil {
		t.Fatalf("failed to query %s: %v", collection, err)
	}
	return len(records)
}
