package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cadfc/gestor/internal/config"
	"github.com/cadfc/gestor/internal/database"
	"github.com/cadfc/gestor/internal/llm"
	"github.com/cadfc/gestor/internal/pipeline"
)

type mockProvider struct {
	response string
	calls    int
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	m.calls++
	return m.response, nil
}

func (m *mockProvider) IsConfigured() bool { return true }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestServer(t *testing.T, db *database.DB, provider llm.Provider) *Server {
	t.Helper()
	cfg := config.Default()
	gen := pipeline.NewWithProvider(db, provider, cfg.Organization.Name, 0)
	srv, err := New(cfg, db, gen)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db, nil)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CADFC") {
		t.Error("expected organization name in response body")
	}
}

func TestGatheringFormRoundTrip(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db, nil)

	form := url.Values{
		"date":     {"2024-03-10"},
		"category": {"Culto de Domingo"},
		"men":      {"20"},
		"women":    {"25"},
	}
	req := httptest.NewRequest("POST", "/gatherings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/gatherings", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "2024-03-10") || !strings.Contains(body, "Culto de Domingo") {
		t.Error("expected stored gathering in listing")
	}
	if !strings.Contains(body, "<strong>45</strong>") {
		t.Error("expected recomputed total 45 in listing")
	}
}

func TestCounselingToggleRoute(t *testing.T) {
	db := openTestDB(t)
	memberID, err := db.InsertMember(database.Member{Name: "Ana", Phone: "1199", Since: "2020-01-01"})
	if err != nil {
		t.Fatalf("seeding member: %v", err)
	}
	sessionID, err := db.InsertCounseling("2024-03-05", memberID, "Conversa")
	if err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	srv := newTestServer(t, db, nil)

	req := httptest.NewRequest("POST", "/counseling/"+sessionID+"/toggle", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	got, err := db.GetCounseling(sessionID)
	if err != nil {
		t.Fatalf("reloading session: %v", err)
	}
	if !got.Resolved {
		t.Error("expected session resolved after toggle")
	}
}

func TestReportPreviewCallsProviderOnce(t *testing.T) {
	db := openTestDB(t)
	db.InsertGathering(database.Gathering{
		Date:       "2024-03-10",
		Category:   database.CategorySundayService,
		Attendance: database.Demographics{Men: 10, Women: 10},
	})
	mock := &mockProvider{response: "Roteiro ||| Resumo ||| Tendências ||| Recomendações"}
	srv := newTestServer(t, db, mock)

	form := url.Values{
		"type":     {"monthly"},
		"month":    {"3"},
		"year":     {"2024"},
		"analysis": {"on"},
	}
	req := httptest.NewRequest("POST", "/reports/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if mock.calls != 1 {
		t.Errorf("expected exactly 1 provider call, got %d", mock.calls)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Março de 2024") {
		t.Error("expected period label in preview")
	}
	if !strings.Contains(body, "Roteiro") {
		t.Error("expected narrative script in preview")
	}
}

func TestReportExportFilename(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db, nil)

	form := url.Values{
		"type":  {"monthly"},
		"month": {"3"},
		"year":  {"2024"},
	}
	req := httptest.NewRequest("POST", "/reports/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "Relatorio_Mensal_3_2024.md") {
		t.Errorf("unexpected Content-Disposition %q", disposition)
	}
	if !strings.Contains(rec.Body.String(), "RELATÓRIO MENSAL DE GESTÃO") {
		t.Error("expected cover heading in exported markdown")
	}
}

func TestAnnualExportFilename(t *testing.T) {
	db := openTestDB(t)
	srv := newTestServer(t, db, nil)

	form := url.Values{
		"type": {"annual"},
		"year": {"2024"},
	}
	req := httptest.NewRequest("POST", "/reports/export", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "Relatorio_Anual_") {
		t.Errorf("unexpected Content-Disposition %q", disposition)
	}
}
