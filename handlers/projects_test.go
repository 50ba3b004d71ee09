package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atitoqs/testhelpers"
)

func TestProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ProjectRequest
		wantErr bool
	}{
		{"valid minimal", ProjectRequest{Name: "House"}, false},
		{"valid full", ProjectRequest{Name: "House", County: "Nairobi", FloorAreaSqm: 120, FloorCount: 2, ContingencyPct: 0.1}, false},
		{"missing name", ProjectRequest{County: "Nairobi"}, true},
		{"negative floor area", ProjectRequest{Name: "House", FloorAreaSqm: -5}, true},
		{"contingency above one", ProjectRequest{Name: "House", ContingencyPct: 1.5}, true},
		{"negative wall height", ProjectRequest{Name: "House", WallHeightM: -2}, true},
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

func TestHandleProjectCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	body := ProjectRequest{
		Name:         "Ruiru Maisonette",
		ClientName:   "J. Wanjiku",
		County:       "Kiambu",
		SoilType:     "red coffee soil",
		FloorAreaSqm: 180,
		FloorCount:   2,
	}
	req := httptest.NewRequest(http.MethodPost, "/api/projects", jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := HandleProjectCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["id"] == "" || resp["id"] == nil {
		t.Error("response has no id")
	}
	if resp["status"] != "draft" {
		t.Errorf("status = %v, want 'draft'", resp["status"])
	}
	if resp["name"] != "Ruiru Maisonette" {
		t.Errorf("name = %v", resp["name"])
	}
}

func TestHandleProjectCreate_Invalid(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/projects", jsonBody(t, ProjectRequest{County: "Nairobi"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := HandleProjectCreate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleProjectUpdate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Before Update", "Nairobi")

	body := ProjectRequest{Name: "After Update", County: "Mombasa", FloorAreaSqm: 95}
	req := httptest.NewRequest(http.MethodPatch, "/api/projects/"+project.Id, jsonBody(t, body))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	reloaded, err := app.FindRecordById("projects", project.Id)
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	if got := reloaded.GetString("name"); got != "After Update" {
		t.Errorf("name = %q, want 'After Update'", got)
	}
	if got := reloaded.GetString("county"); got != "Mombasa" {
		t.Errorf("county = %q, want 'Mombasa'", got)
	}
}

func TestHandleProjectUpdate_LockedWhileProcessing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Locked", "Nairobi")
	project.Set("status", "processing")
	if err := app.Save(project); err != nil {
		t.Fatalf("failed to mark processing: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/projects/"+project.Id, jsonBody(t, ProjectRequest{Name: "New Name"}))
	req.Header.Set("Content-Type", "application/json")
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectUpdate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandleProjectList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProject(t, app, "First", "Nairobi")
	testhelpers.CreateTestProject(t, app, "Second", "Kisumu")

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()

	if err := HandleProjectList(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Projects []map[string]any `json:"projects"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Projects) != 2 {
		t.Errorf("projects = %d, want 2", len(resp.Projects))
	}
}

func TestHandleProjectGet(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Lookup", "Nakuru")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+project.Id, nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectGet(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["name"] != "Lookup" {
		t.Errorf("name = %v, want 'Lookup'", resp["name"])
	}
	if resp["county"] != "Nakuru" {
		t.Errorf("county = %v, want 'Nakuru'", resp["county"])
	}
}

func TestHandleProjectGet_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/nonexistent", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()

	if err := HandleProjectGet(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleProjectDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "Doomed", "Nairobi")

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+project.Id, nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if _, err := app.FindRecordById("projects", project.Id); err == nil {
		t.Error("project still exists after delete")
	}
}

func TestHandleProjectDelete_CascadesArtifacts(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "Cascade Delete")

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/"+project.Id, nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleProjectDelete(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	for _, collection := range []string{"takeoff_results", "boq_items", "bbs_items", "cost_summaries"} {
		if n := countProjectRecords(t, app, collection, project.Id); n != 0 {
			t.Errorf("%s has %d records after project delete, want 0", collection, n)
		}
	}
}
