package tui

import (
	"fmt"
	"strings"
)

// CheckState is the outcome of a single doctor check.
type CheckState string

// Check states.
const (
	CheckOK   CheckState = "ok"
	CheckWarn CheckState = "warn"
	CheckFail CheckState = "fail"
)

// Check is one line of doctor output.
type Check struct {
	Name   string     `json:"name"`
	State  CheckState `json:"state"`
	Detail string     `json:"detail,omitempty"`
}

// RenderChecks renders a titled check list.
func RenderChecks(title string, checks []Check) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for _, c := range checks {
		icon, style := checkIcon(c.State)
		fmt.Fprintf(&b, "  %s %-22s %s\n", style(icon), c.Name, dimStyle.Render(c.Detail))
	}

	failed, warned := CountChecks(checks)
	b.WriteString("\n")
	switch {
	case failed > 0:
		b.WriteString(failedStyle.Render(fmt.Sprintf("  %d problem(s) found", failed)))
	case warned > 0:
		b.WriteString(warningStyle.Render(fmt.Sprintf("  ready, %d warning(s)", warned)))
	default:
		b.WriteString(readyStyle.Render("  ready"))
	}
	b.WriteString("\n")
	return b.String()
}

// CountChecks returns the number of failed and warned checks.
func CountChecks(checks []Check) (failed, warned int) {
	for _, c := range checks {
		switch c.State {
		case CheckFail:
			failed++
		case CheckWarn:
			warned++
		}
	}
	return failed, warned
}

func checkIcon(state CheckState) (string, styleFunc) {
	switch state {
	case CheckOK:
		return checkMark, sf(readyStyle)
	case CheckWarn:
		return warnMark, sf(warningStyle)
	default:
		return crossMark, sf(failedStyle)
	}
}
