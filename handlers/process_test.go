package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atitoqs/testhelpers"
)

func TestProcessRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ProcessRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: ProcessRequest{
				DetectionComplete: true,
				Detections:        []DetectionInput{{Class: "wall", BBox: [4]float64{0, 0, 5, 0.2}, Confidence: 0.9}},
			},
			wantErr: false,
		},
		{
			name:    "detection incomplete",
			req:     ProcessRequest{DetectionComplete: false},
			wantErr: true,
		},
		{
			name: "unknown class",
			req: ProcessRequest{
				DetectionComplete: true,
				Detections:        []DetectionInput{{Class: "staircase", Confidence: 0.9}},
			},
			wantErr: true,
		},
		{
			name: "confidence above one",
			req: ProcessRequest{
				DetectionComplete: true,
				Detections:        []DetectionInput{{Class: "wall", Confidence: 1.5}},
			},
			wantErr: true,
		},
		{
			name:    "no detections still valid",
			req:     ProcessRequest{DetectionComplete: true},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandleProjectProcess_Success(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "Process Success")

	if got := project.GetString("status"); got != "active" {
		t.Errorf("status = %q, want 'active'", got)
	}
	if project.GetString("last_run_id") == "" {
		t.Error("last_run_id not set")
	}
	if project.GetFloat("estimated_cost") <= 0 {
		t.Errorf("estimated_cost = %.2f, want > 0", project.GetFloat("estimated_cost"))
	}

	if n := countProjectRecords(t, app, "takeoff_results", project.Id); n == 0 {
		t.Error("no takeoff results persisted")
	}
	if n := countProjectRecords(t, app, "boq_items", project.Id); n == 0 {
		t.Error("no bill items persisted")
	}
	if n := countProjectRecords(t, app, "bbs_items", project.Id); n == 0 {
		t.Error("no schedule lines persisted")
	}
	if n := countProjectRecords(t, app, "cost_summaries", project.Id); n != 1 {
		t.Errorf("cost summaries = %d, want 1", n)
	}
}

func TestHandleProjectProcess_ResponseBody(t *testing.T) {
	app := seededTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Process Response", "Nairobi")

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID      string  `json:"run_id"`
		Status     string  `json:"status"`
		BOQItems   int     `json:"boq_items"`
		BBSItems   int     `json:"bbs_items"`
		GrandTotal float64 `json:"grand_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.RunID == "" {
		t.Error("run_id missing from response")
	}
	if resp.Status != "active" {
		t.Errorf("status = %q, want 'active'", resp.Status)
	}
	if resp.BOQItems == 0 {
		t.Error("boq_items = 0")
	}
	if resp.BBSItems == 0 {
		t.Error("bbs_items = 0")
	}
	if resp.GrandTotal <= 0 {
		t.Errorf("grand_total = %.2f, want > 0", resp.GrandTotal)
	}
}

func TestHandleProjectProcess_RerunReplacesArtifacts(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "Process Rerun")

	firstRun := project.GetString("last_run_id")
	firstBOQ := countProjectRecords(t, app, "boq_items", project.Id)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("rerun status = %d, body: %s", rec.Code, rec.Body.String())
	}

	reloaded, err := app.FindRecordById("projects", project.Id)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if reloaded.GetString("last_run_id") == firstRun {
		t.Error("last_run_id unchanged after rerun")
	}
	if got := countProjectRecords(t, app, "boq_items", project.Id); got != firstBOQ {
		t.Errorf("bill items after rerun = %d, want %d (replaced, not appended)", got, firstBOQ)
	}
	if got := countProjectRecords(t, app, "cost_summaries", project.Id); got != 1 {
		t.Errorf("cost summaries after rerun = %d, want 1", got)
	}
}

func TestHandleProjectProcess_MissingProject(t *testing.T) {
	app := seededTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/nonexistent/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleProjectProcess_AlreadyProcessing(t *testing.T) {
	app := seededTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Busy Project", "Nairobi")
	project.Set("status", "processing")
	if err := app.Save(project); err != nil {
		t.Fatalf("failed to mark processing: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleProjectProcess_DetectionIncomplete(t *testing.T) {
	app := seededTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Incomplete Detection", "Nairobi")

	body := ProcessRequest{DetectionComplete: false}
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	reloaded, err := app.FindRecordById("projects", project.Id)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if got := reloaded.GetString("status"); got != "draft" {
		t.Errorf("status = %q, want 'draft' (untouched)", got)
	}
}

func TestHandleProjectProcess_UnknownClassRejected(t *testing.T) {
	app := seededTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Bad Class", "Nairobi")

	body := ProcessRequest{
		DetectionComplete: true,
		Detections:        []DetectionInput{{Class: "chimney", Confidence: 0.9}},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if countProjectRecords(t, app, "boq_items", project.Id) != 0 {
		t.Error("bill items persisted for rejected request")
	}
}

func TestHandleProjectProcess_EmptyCatalogStillCompletes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "No Rates", "Nairobi")

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.Id+"/process", jsonBody(t, sampleProcessRequest()))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectProcess(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	summaries, err := findProjectSummary(app, project.Id)
	if err != nil {
		t.Fatalf("failed to load summary: %v", err)
	}
	if summaries == nil {
		t.Fatal("no summary persisted")
	}
	if len(summaries.MissingMaterials) == 0 {
		t.Error("expected missing materials with an empty catalog")
	}
}
