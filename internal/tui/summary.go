package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/wingetrel/internal/services"
)

// RenderSummary formats the outcome of an update run for the terminal.
func RenderSummary(result *services.UpdateResult) string {
	var title string
	if result.DryRun {
		title = TitleStyle.Render(fmt.Sprintf("Dry run: %d manifests rendered for %s", len(result.Files), result.TargetDir))
	} else {
		title = TitleStyle.Render(fmt.Sprintf("Updated %d manifests in %s", len(result.Files), result.TargetDir))
	}

	sections := []string{title}
	if len(result.Installers) > 0 {
		sections = append(sections, renderInstallers(result), "")
	}
	sections = append(sections, renderFiles(result))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderInstallers(result *services.UpdateResult) string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Installers"))
	for _, c := range result.Installers {
		b.WriteString("\n  ")
		b.WriteString(MutedStyle.Render(c.OldURL))
		b.WriteString("\n    " + SymbolArrowRight + " ")
		b.WriteString(URLStyle.Render(c.NewURL))
		b.WriteString("\n      ")
		b.WriteString(HashStyle.Render(c.Sha256))
		if c.Duplicate {
			b.WriteString(" ")
			b.WriteString(MutedStyle.Render("(same artifact as above)"))
		}
	}
	return b.String()
}

func renderFiles(result *services.UpdateResult) string {
	var b strings.Builder
	b.WriteString(SectionStyle.Render("Manifests"))
	for _, f := range result.Files {
		var mark string
		switch {
		case f.Written:
			mark = SuccessStyle.Render(SymbolCheck)
		case result.DryRun:
			mark = WarningStyle.Render(SymbolBullet)
		default:
			mark = ErrorStyle.Render(SymbolCross)
		}
		fmt.Fprintf(&b, "\n  %s %s %s", mark, f.Name, MutedStyle.Render(string(f.Type)))
	}
	return b.String()
}
