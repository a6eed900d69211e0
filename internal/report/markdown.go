package report

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders the assembled document as Markdown. This is the
// built-in renderer: the web UI converts it to HTML and the CLI writes it
// to disk. PDF rasterization is left to an external export collaborator
// consuming the same Document.
func RenderMarkdown(doc *Document, organization string) string {
	var pages []string

	for i, page := range doc.Pages {
		var b strings.Builder

		switch p := page.(type) {
		case CoverPage:
			fmt.Fprintf(&b, "# RELATÓRIO %s DE GESTÃO\n\n", p.TypeLabel)
			fmt.Fprintf(&b, "**PERÍODO: %s**\n\n", strings.ToUpper(p.PeriodLabel))
			fmt.Fprintf(&b, "%s\n\n", p.Tagline)
			fmt.Fprintf(&b, "*Documento gerado automaticamente pelo Sistema %s*", organization)

		case NarrativePage:
			fmt.Fprintf(&b, "## %s\n\n", p.Title)
			b.WriteString("*Esta página contém o discurso sugerido para a liderança.*\n\n")
			b.WriteString(p.Script)

		case DashboardPage:
			fmt.Fprintf(&b, "## %s\n\n", p.Title)
			b.WriteString("| ")
			for _, box := range p.Boxes {
				fmt.Fprintf(&b, "%s | ", box.Label)
			}
			b.WriteString("\n|")
			b.WriteString(strings.Repeat("---|", len(p.Boxes)))
			b.WriteString("\n| ")
			for _, box := range p.Boxes {
				fmt.Fprintf(&b, "**%s** (%s) | ", box.Value, box.Sub)
			}
			b.WriteString("\n")
			for _, sec := range p.Sections {
				fmt.Fprintf(&b, "\n### %s\n\n%s\n", sec.Title, strings.Join(sec.Lines, "\n"))
			}

		case DetailPage:
			fmt.Fprintf(&b, "## %s\n", p.Title)
			for _, table := range p.Tables {
				fmt.Fprintf(&b, "\n### %s\n\n", table.Title)
				b.WriteString(markdownTable(table))
			}

		default:
			// The page set is closed; a new variant must be rendered here.
			panic(fmt.Sprintf("report: unknown page type %T", page))
		}

		header := ""
		if i > 0 {
			header = fmt.Sprintf("*%s — Relatório Oficial | %s | Pág. %d*\n\n", organization, doc.PeriodLabel, i+1)
		}
		pages = append(pages, header+b.String())
	}

	return strings.Join(pages, "\n\n---\n\n") + "\n"
}

func markdownTable(table Table) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(table.Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(table.Header)) + "\n")
	if len(table.Rows) == 0 {
		empty := make([]string, len(table.Header))
		for i := range empty {
			empty[i] = "-"
		}
		b.WriteString("| " + strings.Join(empty, " | ") + " |\n")
		return b.String()
	}
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}
