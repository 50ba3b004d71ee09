package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"atitoqs/testhelpers"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to hyphens", "Kilimani Bungalow", "Kilimani-Bungalow"},
		{"slashes to hyphens", "phase/one", "phase-one"},
		{"backslashes", "phase\\one", "phase-one"},
		{"colons", "plot:12", "plot-12"},
		{"no special chars", "simple", "simple"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeFilename(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildBOQExportData(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "Export Source")

	data, err := buildBOQExportData(app, project.Id)
	if err != nil {
		t.Fatalf("buildBOQExportData error: %v", err)
	}
	if data.ProjectName != "Export Source" {
		t.Errorf("project name = %q", data.ProjectName)
	}
	if len(data.Items) == 0 {
		t.Error("no items in export data")
	}
	if data.Summary.GrandTotal <= 0 {
		t.Errorf("grand total = %.2f, want > 0", data.Summary.GrandTotal)
	}
	if data.GeneratedDate == "" {
		t.Error("generated date empty")
	}
}

func TestBuildBOQExportData_Unprocessed(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "No Summary", "Nairobi")

	if _, err := buildBOQExportData(app, project.Id); err == nil {
		t.Error("expected error for project without a cost summary")
	}
}

func TestHandleBOQExportExcel(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "Excel Export")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+project.Id+"/export/boq.xlsx", nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleBOQExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.Bytes()
	if len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("response is not a zip-based workbook")
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "BOQ_Excel-Export_") {
		t.Errorf("disposition = %q", disposition)
	}
	if !strings.HasSuffix(strings.TrimSuffix(disposition, `"`), ".xlsx") {
		t.Errorf("disposition %q does not name an xlsx file", disposition)
	}
}

func TestHandleBOQExportPDF(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "PDF Export")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+project.Id+"/export/boq.pdf", nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleBOQExportPDF(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Error("response is not a PDF document")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q", got)
	}
}

func TestHandleBBSExportExcel(t *testing.T) {
	app := seededTestApp(t)
	project := processTestProject(t, app, "BBS Excel Export")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+project.Id+"/export/bbs.xlsx", nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleBBSExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.Bytes()
	if len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Error("response is not a zip-based workbook")
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "BBS_") {
		t.Errorf("disposition = %q", disposition)
	}
}

func TestHandleBBSExportExcel_Unprocessed(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	project := testhelpers.CreateTestProject(t, app, "BBS Missing", "Nairobi")

	req := httptest.NewRequest(http.MethodGet, "/api/projects/"+project.Id+"/export/bbs.xlsx", nil)
	req.SetPathValue("id", project.Id)
	rec := httptest.NewRecorder()

	if err := HandleBBSExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleBOQExportExcel_MissingID(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects//export/boq.xlsx", nil)
	rec := httptest.NewRecorder()

	if err := HandleBOQExportExcel(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
