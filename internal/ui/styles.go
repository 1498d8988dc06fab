package ui

import "github.com/charmbracelet/lipgloss"

// --- Theme Colors ---

var (
	ColorPrimary    = lipgloss.Color("#3f8fb0") // steel blue
	ColorSecondary  = lipgloss.Color("#5f9e8f") // sea green
	ColorAccent     = lipgloss.Color("#d19a66") // amber
	ColorBackground = lipgloss.Color("#11181c") // dark
	ColorText       = lipgloss.Color("#dde3ea") // main text
	ColorMuted      = lipgloss.Color("#8e9aaf") // muted text
	ColorSuccess    = lipgloss.Color("#7fb685") // green
	ColorError      = lipgloss.Color("#e06c75") // red
	ColorWarning    = lipgloss.Color("#e5c07b") // yellow
	ColorBorder     = lipgloss.Color("#2b3a42") // border
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	BannerAccentStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)
)
