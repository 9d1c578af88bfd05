package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/mysqlset/internal/inventory"
)

var palette = struct {
	ok, bad, warn, accent, muted, text lipgloss.Color
}{
	ok:     lipgloss.Color("#22c55e"),
	bad:    lipgloss.Color("#ef4444"),
	warn:   lipgloss.Color("#eab308"),
	accent: lipgloss.Color("#3b82f6"),
	muted:  lipgloss.Color("#6b7280"),
	text:   lipgloss.Color("#f9fafb"),
}

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	titleStyle   = fg(palette.text).Bold(true)
	sectionStyle = fg(palette.accent).Bold(true).MarginTop(1)
	footerStyle  = fg(palette.muted).MarginTop(1)

	readyStyle   = fg(palette.ok)
	failedStyle  = fg(palette.bad)
	warningStyle = fg(palette.warn)
	dimStyle     = fg(palette.muted)
	activeStyle  = fg(palette.text).Bold(true)

	primaryStyle = fg(palette.accent).Bold(true)
	replicaStyle = fg(palette.muted)
)

func roleStyle(role inventory.Role) lipgloss.Style {
	if role == inventory.RolePrimary {
		return primaryStyle
	}
	return replicaStyle
}

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	pending   = "[  ]"
	warnMark  = "[??]"
)

var spinnerFrames = []string{"[. ]", "[..]", "[ .]", "[  ]"}
