package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cadfc/gestor/internal/database"
	"github.com/cadfc/gestor/internal/period"
	"github.com/cadfc/gestor/internal/report"
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

func seedMarch(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.InsertGathering(database.Gathering{
		Date:       "2024-03-10",
		Category:   database.CategorySundayService,
		Attendance: database.Demographics{Men: 20, Women: 25, Adolescents: 3, Children: 2},
	})
	if err != nil {
		t.Fatalf("seeding gathering: %v", err)
	}
	if _, err := db.InsertActivity(database.Activity{
		Date:        "2024-03-12",
		Category:    database.ActivityPastoralVisit,
		Description: "Visita",
	}); err != nil {
		t.Fatalf("seeding activity: %v", err)
	}
	// Out-of-period noise.
	db.InsertGathering(database.Gathering{
		Date:       "2024-04-07",
		Category:   database.CategorySundayService,
		Attendance: database.Demographics{Men: 100},
	})
}

func TestGenerateWithoutAnalysis(t *testing.T) {
	db := openTestDB(t)
	seedMarch(t, db)

	mock := &mockProvider{}
	g := NewWithProvider(db, mock, "CADFC", 0)
	sel := period.Selector{Type: period.Monthly, Month: time.March, Year: 2024}

	r, err := g.Generate(context.Background(), sel, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.calls != 0 {
		t.Errorf("expected no narrative calls, got %d", mock.calls)
	}
	if r.Narrative != nil {
		t.Error("expected nil narrative when analysis is skipped")
	}
	if r.Summary.GatheringCount != 1 {
		t.Errorf("expected 1 gathering in period, got %d", r.Summary.GatheringCount)
	}
	if r.Summary.TotalAttendance != 50 {
		t.Errorf("expected attendance 50, got %d", r.Summary.TotalAttendance)
	}
	// No narrative: cover, dashboard, detail.
	if len(r.Document.Pages) != 3 {
		t.Errorf("expected 3 pages, got %d", len(r.Document.Pages))
	}
}

func TestGenerateWithAnalysis(t *testing.T) {
	db := openTestDB(t)
	seedMarch(t, db)

	mock := &mockProvider{response: "Roteiro ||| Resumo ||| Tendências ||| Recomendações"}
	g := NewWithProvider(db, mock, "CADFC", 0)
	sel := period.Selector{Type: period.Monthly, Month: time.March, Year: 2024}

	r, err := g.Generate(context.Background(), sel, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.calls != 1 {
		t.Errorf("expected exactly 1 narrative call, got %d", mock.calls)
	}
	if r.Narrative == nil || r.Narrative.Script != "Roteiro" {
		t.Fatalf("unexpected narrative: %+v", r.Narrative)
	}
	if len(r.Document.Pages) != 4 {
		t.Errorf("expected 4 pages with narrative, got %d", len(r.Document.Pages))
	}
	if report.ArtifactName(r.Selector) != "Relatorio_Mensal_3_2024.pdf" {
		t.Errorf("unexpected artifact name %q", report.ArtifactName(r.Selector))
	}
}

func TestGenerateEmptyPeriodSkipsServiceCall(t *testing.T) {
	db := openTestDB(t)

	mock := &mockProvider{response: "should not be used"}
	g := NewWithProvider(db, mock, "CADFC", 0)
	sel := period.Selector{Type: period.Monthly, Month: time.January, Year: 2020}

	r, err := g.Generate(context.Background(), sel, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.calls != 0 {
		t.Errorf("expected zero narrative calls for empty period, got %d", mock.calls)
	}
	if r.Narrative == nil {
		t.Fatal("expected insufficient-data narrative")
	}
	if r.Narrative.Summary != "Nenhum registro encontrado para o período selecionado." {
		t.Errorf("unexpected narrative summary: %q", r.Narrative.Summary)
	}
}

func TestGenerateSurfacesDataQualityWarnings(t *testing.T) {
	db := openTestDB(t)
	// A malformed date slips in through the store's free-form date column.
	if _, err := db.InsertGathering(database.Gathering{
		Date:     "10/03/2024",
		Category: database.CategoryVigil,
	}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	g := NewWithProvider(db, nil, "CADFC", 0)
	sel := period.Selector{Type: period.Monthly, Month: time.March, Year: 2024}

	r, err := g.Generate(context.Background(), sel, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(r.Warnings))
	}
	if r.Warnings[0].Collection != "gatherings" {
		t.Errorf("unexpected warning: %+v", r.Warnings[0])
	}
	if r.Summary.GatheringCount != 0 {
		t.Error("unfilterable record must not count toward metrics")
	}
}
