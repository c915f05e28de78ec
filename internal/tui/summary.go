package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

type field struct {
	label string
	value string
}

func summaryFields(s datmerge.Summary) []field {
	second := "n/a"
	if s.Stats.SecondHighest != nil {
		second = datmerge.FormatAmount(*s.Stats.SecondHighest)
	}

	fields := []field{
		{"Files", fmt.Sprintf("%d", len(s.Files))},
		{"Lines", fmt.Sprintf("%d", s.LinesRead)},
		{"Records", fmt.Sprintf("%d", s.RecordsParsed)},
		{"Duplicates", fmt.Sprintf("%d", s.Duplicates)},
		{"Skipped lines", fmt.Sprintf("%d", s.SkippedLines)},
		{"Identities", fmt.Sprintf("%d", s.Stats.Identities)},
		{"Total salary", datmerge.FormatAmount(s.Stats.GrandTotal)},
		{"Average", datmerge.FormatAmount(s.Stats.Average)},
		{"Highest", datmerge.FormatAmount(s.Stats.Highest)},
		{"Second highest", second},
		{"Output", s.OutputPath},
		{"Dataset ID", s.DatasetID},
	}
	if s.Exported {
		fields = append(fields, field{"PostgreSQL", "exported"})
	}
	return fields
}

// RenderSummary formats the outcome of a merge run for the terminal.
func RenderSummary(s datmerge.Summary, mode Mode) string {
	if mode == ModeStyled {
		return renderStyled(s)
	}
	return renderPlain(s)
}

func renderPlain(s datmerge.Summary) string {
	var b strings.Builder
	b.WriteString("Merge complete\n")
	for _, f := range summaryFields(s) {
		fmt.Fprintf(&b, "  %-16s %s\n", f.label+":", f.value)
	}
	if s.SkippedLines > 0 {
		fmt.Fprintf(&b, "%d line(s) were skipped, see warnings above\n", s.SkippedLines)
	}
	return b.String()
}

func renderStyled(s datmerge.Summary) string {
	rows := make([]string, 0, 16)
	rows = append(rows, TitleStyle.Render(SymbolCheck+" Merge complete"), "")
	for _, f := range summaryFields(s) {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			LabelStyle.Render(f.label),
			ValueStyle.Render(f.value),
		))
	}
	if s.SkippedLines > 0 {
		rows = append(rows, "", WarningStyle.Render(fmt.Sprintf("%s %d line(s) were skipped, see warnings above", SymbolWarning, s.SkippedLines)))
	}

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)) + "\n"
}
