package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ██╗  ██╗██╗   ██╗██████╗  ██████╗████████╗██╗
 ██║  ██║██║   ██║██╔══██╗██╔════╝╚══██╔══╝██║
 ███████║██║   ██║██████╔╝██║        ██║   ██║
 ██╔══██║██║   ██║██╔══██╗██║        ██║   ██║
 ██║  ██║╚██████╔╝██████╔╝╚██████╗   ██║   ███████╗
 ╚═╝  ╚═╝ ╚═════╝ ╚═════╝  ╚═════╝   ╚═╝   ╚══════╝`

const bannerSubtitle = "Data Hub Console • Entities and Flows"

// RenderBanner returns the styled ASCII banner with its subtitle.
func RenderBanner() string {
	lines := splitLines(bannerArt)
	var rendered strings.Builder

	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		// bottom shadow row in the secondary color
		style := BannerStyle
		if i == len(lines)-1 {
			style = BannerAccentStyle
		}
		rendered.WriteString(style.Render(line) + "\n")
	}

	subtitleWidth := lipgloss.Width(bannerSubtitle)
	blockWidth := max(maxWidth, subtitleWidth)

	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)

	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", subtitleWidth))

	return "\n" + rendered.String() + "\n" + subtitle + "\n" + underline + "\n"
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}
