// Package report assembles the paginated period report from aggregated
// metrics and the AI narrative. Assembly is pure layout: it never touches
// the store or the network, and the same inputs always produce the same
// document.
package report

import (
	"fmt"
	"strings"

	"github.com/cadfc/gestor/internal/analysis"
	"github.com/cadfc/gestor/internal/metrics"
	"github.com/cadfc/gestor/internal/period"
)

// Layout units mirror an A4 page in millimeters.
const (
	PageWidth  = 210
	PageHeight = 297

	// Dashboard page: four metric boxes in a fixed row, then the
	// narrative blocks stacked below.
	metricBoxY   = 45
	metricBoxW   = 45
	metricBoxH   = 25
	metricBoxGap = 5
	metricBoxX   = 10
	sectionTop   = metricBoxY + metricBoxH + 15

	// Narrative blocks wrap at a fixed character width; their height is a
	// function of the wrapped line count alone.
	WrapWidth         = 95
	sectionLineHeight = 5
	sectionPadding    = 12

	// Detail pages: tables start below the page header; a section whose
	// header would begin within bottomThreshold units of the page bottom
	// moves to a fresh page instead.
	tableTop        = 50
	tableRowHeight  = 9
	tableGap        = 15
	bottomThreshold = 60
)

// PageKind tags the closed set of page variants.
type PageKind int

const (
	KindCover PageKind = iota
	KindNarrative
	KindDashboard
	KindDetail
)

// Page is one typed page of the assembled document.
type Page interface {
	Kind() PageKind
}

// CoverPage opens every report. It depends only on the selector.
type CoverPage struct {
	TypeLabel   string // "MENSAL" or "ANUAL"
	PeriodLabel string
	Tagline     string
}

func (CoverPage) Kind() PageKind { return KindCover }

// NarrativePage carries the presentation script. It is omitted entirely
// when there is no script to print.
type NarrativePage struct {
	Title  string
	Script string
	Lines  []string
}

func (NarrativePage) Kind() PageKind { return KindNarrative }

// MetricBox is one fixed dashboard figure.
type MetricBox struct {
	Label string
	Value string
	Sub   string
	X     int
}

// TextBlock is a titled narrative paragraph on the dashboard page. Y is
// the block's vertical offset; Height is derived from the wrapped lines.
type TextBlock struct {
	Title  string
	Lines  []string
	Y      int
	Height int
}

// DashboardPage holds the metric row and the narrative sub-sections.
type DashboardPage struct {
	Title    string
	Boxes    []MetricBox
	Sections []TextBlock
}

func (DashboardPage) Kind() PageKind { return KindDashboard }

// Table is a record-level table at a fixed vertical position.
type Table struct {
	Title  string
	Y      int
	Header []string
	Rows   [][]string
}

// DetailPage holds one or two record tables.
type DetailPage struct {
	Title  string
	Tables []Table
}

func (DetailPage) Kind() PageKind { return KindDetail }

// Document is the assembled, ordered report. It exists only while being
// exported; nothing persists it.
type Document struct {
	Selector    period.Selector
	PeriodLabel string
	Pages       []Page
}

// Assemble builds the report document in its fixed page order:
// cover, narrative (when a script exists), dashboard, detail page(s).
func Assemble(sel period.Selector, summary metrics.Summary, narrative *analysis.Narrative, filtered *period.Filtered) *Document {
	doc := &Document{
		Selector:    sel,
		PeriodLabel: sel.Label(),
	}

	typeLabel := "MENSAL"
	if sel.Type == period.Annual {
		typeLabel = "ANUAL"
	}
	doc.Pages = append(doc.Pages, CoverPage{
		TypeLabel:   typeLabel,
		PeriodLabel: doc.PeriodLabel,
		Tagline:     "Análise de Crescimento, Frequência e Atividades",
	})

	if narrative != nil && strings.TrimSpace(narrative.Script) != "" {
		doc.Pages = append(doc.Pages, NarrativePage{
			Title:  "Roteiro de Apresentação Oral",
			Script: narrative.Script,
			Lines:  Wrap(narrative.Script, WrapWidth),
		})
	}

	doc.Pages = append(doc.Pages, assembleDashboard(summary, narrative))
	doc.Pages = append(doc.Pages, assembleDetail(filtered)...)

	return doc
}

func assembleDashboard(summary metrics.Summary, narrative *analysis.Narrative) DashboardPage {
	page := DashboardPage{Title: "Dashboard Executivo"}

	boxes := []struct {
		label, value, sub string
	}{
		{"Total Cultos", fmt.Sprintf("%d", summary.GatheringCount), "Eventos"},
		{"Frequência Total", fmt.Sprintf("%d", summary.TotalAttendance), "Pessoas"},
		{"Média/Culto", fmt.Sprintf("%d", summary.AvgAttendance), "Pessoas"},
		{"Atendimentos", fmt.Sprintf("%d", summary.CounselingTotal), fmt.Sprintf("%d Resolvidos", summary.CounselingResolved)},
	}
	for i, b := range boxes {
		page.Boxes = append(page.Boxes, MetricBox{
			Label: b.label,
			Value: b.value,
			Sub:   b.sub,
			X:     metricBoxX + i*(metricBoxW+metricBoxGap),
		})
	}

	if narrative == nil {
		return page
	}

	sections := []struct {
		title, text string
	}{
		{"Resumo Estratégico", narrative.Summary},
		{"Tendências e Anomalias", narrative.Trends},
		{"Recomendações da Consultoria", narrative.Recommendations},
	}

	// Each block's offset accumulates from the previous block's height,
	// the one data-dependent piece of layout on this page.
	y := sectionTop
	for _, sec := range sections {
		if strings.TrimSpace(sec.text) == "" {
			continue
		}
		lines := Wrap(sec.text, WrapWidth)
		height := len(lines)*sectionLineHeight + sectionPadding
		page.Sections = append(page.Sections, TextBlock{
			Title:  sec.title,
			Lines:  lines,
			Y:      y,
			Height: height,
		})
		y += height
	}

	return page
}

func assembleDetail(filtered *period.Filtered) []Page {
	gatheringsTable := Table{
		Title:  "Histórico de Cultos e Jornadas",
		Y:      tableTop,
		Header: []string{"Data", "Tipo", "Homens", "Mulh.", "Jovens", "Crianças", "Online", "Total"},
	}
	for _, g := range filtered.Gatherings {
		gatheringsTable.Rows = append(gatheringsTable.Rows, []string{
			displayDate(g.Date),
			string(g.Category),
			fmt.Sprintf("%d", g.Attendance.Men),
			fmt.Sprintf("%d", g.Attendance.Women),
			fmt.Sprintf("%d", g.Attendance.Adolescents),
			fmt.Sprintf("%d", g.Attendance.Children),
			fmt.Sprintf("%d", g.Attendance.Online),
			fmt.Sprintf("%d", g.Total),
		})
	}

	activitiesTable := Table{
		Title:  "Registro de Atividades Externas",
		Header: []string{"Data", "Tipo", "Descrição", "Local"},
	}
	for _, a := range filtered.Activities {
		location := "-"
		if a.Location != nil && *a.Location != "" {
			location = *a.Location
		}
		activitiesTable.Rows = append(activitiesTable.Rows, []string{
			displayDate(a.Date),
			string(a.Category),
			a.Description,
			location,
		})
	}

	// Page-break policy: break when the activities header would start
	// within bottomThreshold units of the page bottom.
	gatheringsEnd := tableTop + (len(gatheringsTable.Rows)+1)*tableRowHeight
	activitiesTitleY := gatheringsEnd + tableGap

	if activitiesTitleY > PageHeight-bottomThreshold {
		activitiesTable.Y = tableTop
		return []Page{
			DetailPage{Title: "Detalhamento Operacional", Tables: []Table{gatheringsTable}},
			DetailPage{Title: "Atividades Externas", Tables: []Table{activitiesTable}},
		}
	}

	activitiesTable.Y = activitiesTitleY + 5
	return []Page{
		DetailPage{Title: "Detalhamento Operacional", Tables: []Table{gatheringsTable, activitiesTable}},
	}
}

// displayDate reformats a stored YYYY-MM-DD date as DD/MM/YYYY. Malformed
// values pass through untouched so a bad record stays visible in tables.
func displayDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// Wrap greedily wraps text at the given character width, preserving
// explicit newlines. Words longer than the width are hard-split so the
// line count stays bounded and deterministic.
func Wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.TrimSpace(text), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range words {
			for len(word) > width {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				lines = append(lines, word[:width])
				word = word[width:]
			}
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= width:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
