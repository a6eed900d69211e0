// Package server is the embedded web UI: record entry forms for the four
// collections plus the report generation page. Authentication is expected
// to happen in front of it (reverse proxy); the server itself is
// single-scope.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/cadfc/gestor/internal/config"
	"github.com/cadfc/gestor/internal/database"
	"github.com/cadfc/gestor/internal/metrics"
	"github.com/cadfc/gestor/internal/period"
	"github.com/cadfc/gestor/internal/pipeline"
	"github.com/cadfc/gestor/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the management UI.
type Server struct {
	db        *database.DB
	generator *pipeline.Generator
	cfg       *config.Config
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server.
func New(cfg *config.Config, db *database.DB, generator *pipeline.Generator) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{
		"index.html", "gatherings.html", "members.html",
		"counseling.html", "activities.html", "reports.html", "report_view.html",
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, generator: generator, cfg: cfg, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/gatherings", s.handleGatherings)
	s.mux.HandleFunc("/gatherings/", s.handleGatheringAction)
	s.mux.HandleFunc("/members", s.handleMembers)
	s.mux.HandleFunc("/members/", s.handleMemberAction)
	s.mux.HandleFunc("/counseling", s.handleCounseling)
	s.mux.HandleFunc("/counseling/", s.handleCounselingAction)
	s.mux.HandleFunc("/activities", s.handleActivities)
	s.mux.HandleFunc("/activities/", s.handleActivityAction)
	s.mux.HandleFunc("/reports", s.handleReports)
	s.mux.HandleFunc("/reports/preview", s.handleReportPreview)
	s.mux.HandleFunc("/reports/export", s.handleReportExport)
}

// handleIndex renders the dashboard for the current calendar month.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap, err := s.db.LoadAll()
	if err != nil {
		s.internalError(w, "loading records", err)
		return
	}

	sel := period.CurrentMonth()
	filtered, warnings := period.Filter(snap, sel)
	summary := metrics.Aggregate(filtered.Gatherings, filtered.Counseling, filtered.Activities)

	s.render(w, "index.html", map[string]any{
		"Organization": s.cfg.Organization.Name,
		"PeriodLabel":  sel.Label(),
		"Summary":      summary,
		"Recent":       recentGatherings(filtered.Gatherings, 10),
		"Warnings":     warnings,
		"MemberCount":  len(snap.Members),
	})
}

func recentGatherings(gatherings []database.Gathering, n int) []database.Gathering {
	if len(gatherings) > n {
		return gatherings[:n]
	}
	return gatherings
}

// --- gatherings ---

func (s *Server) handleGatherings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		g := database.Gathering{
			Date:     strings.TrimSpace(r.FormValue("date")),
			Category: database.GatheringCategory(r.FormValue("category")),
			Attendance: database.Demographics{
				Men:         formInt(r, "men"),
				Women:       formInt(r, "women"),
				Adolescents: formInt(r, "adolescents"),
				Children:    formInt(r, "children"),
				Online:      formInt(r, "online"),
			},
		}
		if notes := strings.TrimSpace(r.FormValue("notes")); notes != "" {
			g.Notes = &notes
		}
		if g.Date != "" && g.Category.Valid() {
			if _, err := s.db.InsertGathering(g); err != nil {
				s.internalError(w, "inserting gathering", err)
				return
			}
		}
		http.Redirect(w, r, "/gatherings", http.StatusFound)
		return
	}

	gatherings, err := s.db.GetAllGatherings()
	if err != nil {
		s.internalError(w, "loading gatherings", err)
		return
	}
	s.render(w, "gatherings.html", map[string]any{
		"Gatherings": gatherings,
		"Categories": database.GatheringCategories(),
	})
}

func (s *Server) handleGatheringAction(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitAction(r, "/gatherings/")
	if !ok || r.Method != http.MethodPost {
		http.Redirect(w, r, "/gatherings", http.StatusFound)
		return
	}
	if action == "delete" {
		if err := s.db.DeleteGathering(id); err != nil {
			s.internalError(w, "deleting gathering", err)
			return
		}
	}
	http.Redirect(w, r, "/gatherings", http.StatusFound)
}

// --- members ---

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		m := database.Member{
			Name:  strings.TrimSpace(r.FormValue("name")),
			Phone: strings.TrimSpace(r.FormValue("phone")),
			Since: strings.TrimSpace(r.FormValue("since")),
		}
		if m.Name != "" {
			if _, err := s.db.InsertMember(m); err != nil {
				s.internalError(w, "inserting member", err)
				return
			}
		}
		http.Redirect(w, r, "/members", http.StatusFound)
		return
	}

	members, err := s.db.GetAllMembers()
	if err != nil {
		s.internalError(w, "loading members", err)
		return
	}
	s.render(w, "members.html", map[string]any{"Members": members})
}

func (s *Server) handleMemberAction(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitAction(r, "/members/")
	if !ok || r.Method != http.MethodPost {
		http.Redirect(w, r, "/members", http.StatusFound)
		return
	}
	if action == "edit" {
		name := strings.TrimSpace(r.FormValue("name"))
		if name != "" {
			err := s.db.UpdateMember(database.Member{
				ID:    id,
				Name:  name,
				Phone: strings.TrimSpace(r.FormValue("phone")),
				Since: strings.TrimSpace(r.FormValue("since")),
			})
			if err != nil {
				s.internalError(w, "updating member", err)
				return
			}
		}
	}
	http.Redirect(w, r, "/members", http.StatusFound)
}

// --- counseling ---

func (s *Server) handleCounseling(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		date := strings.TrimSpace(r.FormValue("date"))
		memberID := r.FormValue("member_id")
		if date != "" && memberID != "" {
			if _, err := s.db.InsertCounseling(date, memberID, strings.TrimSpace(r.FormValue("notes"))); err != nil {
				s.internalError(w, "inserting counseling session", err)
				return
			}
		}
		http.Redirect(w, r, "/counseling", http.StatusFound)
		return
	}

	sessions, err := s.db.GetAllCounseling()
	if err != nil {
		s.internalError(w, "loading counseling sessions", err)
		return
	}
	members, err := s.db.GetAllMembers()
	if err != nil {
		s.internalError(w, "loading members", err)
		return
	}
	s.render(w, "counseling.html", map[string]any{
		"Sessions": sessions,
		"Members":  members,
	})
}

func (s *Server) handleCounselingAction(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitAction(r, "/counseling/")
	if !ok || r.Method != http.MethodPost {
		http.Redirect(w, r, "/counseling", http.StatusFound)
		return
	}
	switch action {
	case "toggle":
		if err := s.db.ToggleCounselingResolved(id); err != nil {
			s.internalError(w, "toggling session", err)
			return
		}
	case "edit":
		date := strings.TrimSpace(r.FormValue("date"))
		if date != "" {
			if err := s.db.UpdateCounseling(id, date, strings.TrimSpace(r.FormValue("notes"))); err != nil {
				s.internalError(w, "updating session", err)
				return
			}
		}
	}
	http.Redirect(w, r, "/counseling", http.StatusFound)
}

// --- activities ---

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		a := database.Activity{
			Date:        strings.TrimSpace(r.FormValue("date")),
			Category:    database.ActivityCategory(r.FormValue("category")),
			Description: strings.TrimSpace(r.FormValue("description")),
		}
		if location := strings.TrimSpace(r.FormValue("location")); location != "" {
			a.Location = &location
		}
		if a.Date != "" && a.Category.Valid() {
			if _, err := s.db.InsertActivity(a); err != nil {
				s.internalError(w, "inserting activity", err)
				return
			}
		}
		http.Redirect(w, r, "/activities", http.StatusFound)
		return
	}

	activities, err := s.db.GetAllActivities()
	if err != nil {
		s.internalError(w, "loading activities", err)
		return
	}
	s.render(w, "activities.html", map[string]any{
		"Activities": activities,
		"Categories": database.ActivityCategories(),
	})
}

func (s *Server) handleActivityAction(w http.ResponseWriter, r *http.Request) {
	id, action, ok := splitAction(r, "/activities/")
	if !ok || r.Method != http.MethodPost {
		http.Redirect(w, r, "/activities", http.StatusFound)
		return
	}
	if action == "delete" {
		if err := s.db.DeleteActivity(id); err != nil {
			s.internalError(w, "deleting activity", err)
			return
		}
	}
	http.Redirect(w, r, "/activities", http.StatusFound)
}

// --- reports ---

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.render(w, "reports.html", map[string]any{
		"CurrentMonth": int(now.Month()),
		"CurrentYear":  now.Year(),
		"Years":        yearOptions(now.Year()),
		"Months":       monthOptions(),
	})
}

// handleReportPreview runs one full generation for the selected period.
// The narrative call is synchronous; the form's submit button is disabled
// client-side while the request is in flight so a view never has two
// generations outstanding.
func (s *Server) handleReportPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/reports", http.StatusFound)
		return
	}

	sel := parseSelector(r)
	withAnalysis := r.FormValue("analysis") == "on"

	result, err := s.generator.Generate(r.Context(), sel, withAnalysis)
	if err != nil {
		s.internalError(w, "generating report", err)
		return
	}

	s.render(w, "report_view.html", map[string]any{
		"PeriodLabel": result.PeriodLabel,
		"Summary":     result.Summary,
		"Narrative":   result.Narrative,
		"Warnings":    result.Warnings,
		"Markdown":    result.Markdown(s.cfg.Organization.Name),
		"Month":       int(sel.Month),
		"Year":        sel.Year,
		"Annual":      sel.Type == period.Annual,
		"Analysis":    withAnalysis,
	})
}

// handleReportExport re-generates the report and serves the rendered
// Markdown under the deterministic artifact name.
func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/reports", http.StatusFound)
		return
	}

	sel := parseSelector(r)
	withAnalysis := r.FormValue("analysis") == "on"

	result, err := s.generator.Generate(r.Context(), sel, withAnalysis)
	if err != nil {
		s.internalError(w, "generating report", err)
		return
	}

	name := report.ArtifactNameWithExt(sel, "md")
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	fmt.Fprint(w, result.Markdown(s.cfg.Organization.Name))
}

// --- helpers ---

func parseSelector(r *http.Request) period.Selector {
	now := time.Now()
	sel := period.Selector{Type: period.Monthly, Month: now.Month(), Year: now.Year()}

	if r.FormValue("type") == "annual" {
		sel.Type = period.Annual
	}
	if month, err := strconv.Atoi(r.FormValue("month")); err == nil && month >= 1 && month <= 12 {
		sel.Month = time.Month(month)
	}
	if year, err := strconv.Atoi(r.FormValue("year")); err == nil && year > 0 {
		sel.Year = year
	}
	return sel
}

func formInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.FormValue(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// splitAction parses "/{prefix}/{id}/{action}" paths.
func splitAction(r *http.Request, prefix string) (id, action string, ok bool) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

type monthOption struct {
	Value int
	Name  string
}

func monthOptions() []monthOption {
	names := []string{
		"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
	}
	options := make([]monthOption, 12)
	for i, n := range names {
		options[i] = monthOption{Value: i + 1, Name: n}
	}
	return options
}

func yearOptions(current int) []int {
	years := make([]int, 5)
	for i := range years {
		years[i] = current - i
	}
	return years
}

func (s *Server) internalError(w http.ResponseWriter, context string, err error) {
	log.Printf("%s: %v", context, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(cfg *config.Config, db *database.DB, generator *pipeline.Generator, port int) error {
	srv, err := New(cfg, db, generator)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
