package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/mysqlset/internal/inventory"
)

// styleFunc is a single-string styling function.
type styleFunc func(string) string

// sf wraps a lipgloss.Style into a styleFunc.
func sf(s lipgloss.Style) styleFunc {
	return func(str string) string { return s.Render(str) }
}

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)

	if m.Status != nil && m.Status.Found {
		renderProgressBar(&b, m)
		renderRollout(&b, m)
		renderPods(&b, m)
	}
	if m.Status != nil {
		renderClaims(&b, m)
	}
	if m.FetchErr != nil {
		fmt.Fprintf(&b, "\n  %s %s\n", failedStyle.Render(crossMark), dimStyle.Render(m.FetchErr.Error()))
	}

	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("mysqlset: %s/%s", m.Namespace, m.Name)))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Status == nil:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + dimStyle.Render("loading...")
	case !m.Status.Found:
		status += warningStyle.Render("Not deployed")
	case m.Status.Ready():
		status += readyStyle.Render("Ready")
	default:
		status += activeStyle.Render(currentSpinner(m.SpinnerFrame)+" ") + warningStyle.Render("Progressing")
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	s := m.Status
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}

	progress := 0.0
	if s.Desired > 0 {
		progress = float64(s.ReadyReplicas) / float64(s.Desired)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	bar := readyStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d/%d ready\n", bar, s.ReadyReplicas, s.Desired)
}

func renderRollout(b *strings.Builder, m Model) {
	s := m.Status
	icon, style := statusIcon(s.RolloutComplete)
	fmt.Fprintf(b, "  %s %s\n", style(icon), style(s.Rollout))
	if s.UpdateRevision != "" && s.UpdateRevision != s.CurrentRevision {
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(fmt.Sprintf("revision %s -> %s", s.CurrentRevision, s.UpdateRevision)))
	}
}

func renderPods(b *strings.Builder, m Model) {
	b.WriteString(sectionStyle.Render("  Pods"))
	b.WriteString("\n")

	if len(m.Status.Pods) == 0 {
		fmt.Fprintf(b, "    %s\n", dimStyle.Render("no pods yet"))
		return
	}

	for _, pod := range m.Status.Pods {
		icon, style := podIcon(pod, m.SpinnerFrame)
		restarts := ""
		if pod.Restarts > 0 {
			restarts = warningStyle.Render(fmt.Sprintf(" restarts=%d", pod.Restarts))
		}
		role := roleStyle(pod.Role).Render(fmt.Sprintf("%-8s", pod.Role))
		fmt.Fprintf(b, "    %s %-18s %s %-10s %s%s\n",
			style(icon), pod.Name, role, style(pod.Phase), dimStyle.Render(pod.Node), restarts)
	}
}

func renderClaims(b *strings.Builder, m Model) {
	s := m.Status
	if len(s.Claims) == 0 {
		return
	}

	b.WriteString(sectionStyle.Render("  Claims"))
	b.WriteString("\n")

	for _, claim := range s.Claims {
		icon, style := claimIcon(claim)
		extra := ""
		if claim.Orphaned {
			extra = warningStyle.Render(" orphaned")
		}
		fmt.Fprintf(b, "    %s %-22s %-8s %-6s %s%s\n",
			style(icon), claim.Name, style(claim.Phase), claim.Capacity, dimStyle.Render(claim.StorageClass), extra)
	}
}

func renderFooter(b *strings.Builder, m Model) {
	parts := []string{fmt.Sprintf("elapsed: %s", formatDuration(time.Since(m.StartTime)))}
	if !m.LastUpdate.IsZero() {
		parts = append(parts, fmt.Sprintf("updated: %s ago", formatDuration(time.Since(m.LastUpdate))))
	}
	b.WriteString(footerStyle.Render(fmt.Sprintf("  %s  |  q: quit", strings.Join(parts, "  |  "))))
	b.WriteString("\n")
}

// RenderOnce renders a snapshot without the interactive footer.
func RenderOnce(status *inventory.Status) string {
	m := NewWatchModel(status.Name, status.Namespace)
	m.Status = status

	var b strings.Builder
	renderHeader(&b, m)
	if status.Found {
		renderProgressBar(&b, m)
		renderRollout(&b, m)
		renderPods(&b, m)
	}
	renderClaims(&b, m)
	if len(status.Orphans) > 0 {
		fmt.Fprintf(&b, "\n  %s %s\n", warningStyle.Render(warnMark),
			dimStyle.Render(fmt.Sprintf("%d claims outlive their pods; `mysqlset scale --prune-claims` removes them", len(status.Orphans))))
	}
	return b.String()
}

func statusIcon(ready bool) (string, styleFunc) {
	if ready {
		return checkMark, sf(readyStyle)
	}
	return crossMark, sf(failedStyle)
}

func podIcon(pod inventory.PodStatus, frame int) (string, styleFunc) {
	switch {
	case pod.Ready:
		return checkMark, sf(readyStyle)
	case pod.Phase == "Failed":
		return crossMark, sf(failedStyle)
	case pod.Phase == "Pending" || pod.Phase == "Running":
		return currentSpinner(frame), sf(activeStyle)
	default:
		return warnMark, sf(warningStyle)
	}
}

func claimIcon(claim inventory.ClaimStatus) (string, styleFunc) {
	switch {
	case claim.Orphaned:
		return warnMark, sf(warningStyle)
	case claim.Phase == "Bound":
		return checkMark, sf(readyStyle)
	case claim.Phase == "Lost":
		return crossMark, sf(failedStyle)
	default:
		return pending, sf(dimStyle)
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
