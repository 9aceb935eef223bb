package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Width(10)
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true)
)

// swatch renders a block painted with the given triple.
func swatch(triple string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(color.HSLToHex(triple))).
		Render("      ")
}

func colorLine(label, triple string) string {
	return fmt.Sprintf("%s %s %-18s %s",
		labelStyle.Render(label),
		swatch(triple),
		triple,
		faintStyle.Render(color.HSLToHex(triple)),
	)
}

func renderTheme(w io.Writer, cfg models.ThemeConfig) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.AppName))
	b.WriteString(faintStyle.Render(" (" + cfg.ID + ")"))
	b.WriteString("\n\n")
	b.WriteString(colorLine("primary", cfg.PrimaryColor) + "\n")
	b.WriteString(colorLine("accent", cfg.AccentColor) + "\n")
	b.WriteString(colorLine("sidebar", cfg.SidebarColor) + "\n")
	if cfg.LogoURL != "" {
		b.WriteString(labelStyle.Render("logo") + " " + cfg.LogoURL + "\n")
	}
	if cfg.FaviconURL != "" {
		b.WriteString(labelStyle.Render("favicon") + " " + cfg.FaviconURL + "\n")
	}
	if cfg.CustomCSS != "" {
		b.WriteString(labelStyle.Render("css") + " " + faintStyle.Render(fmt.Sprintf("%d bytes of custom CSS", len(cfg.CustomCSS))) + "\n")
	}
	fmt.Fprint(w, b.String())
}

func renderWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render("warning: "+msg))
}
