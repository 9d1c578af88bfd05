package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/mysqlset/internal/inventory"
)

// FetchFunc returns the current snapshot of the deployment.
type FetchFunc func(ctx context.Context) (*inventory.Status, error)

// RunWatchTUI shows a live dashboard until the user quits or ctx ends.
// observe, if set, receives every successful snapshot.
func RunWatchTUI(ctx context.Context, m Model, interval time.Duration, fetch FetchFunc, observe func(*inventory.Status)) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Poll status in background
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			fetchCtx, cancel := context.WithTimeout(ctx, interval+5*time.Second)
			status, err := fetch(fetchCtx)
			cancel()
			if err == nil && observe != nil {
				observe(status)
			}
			p.Send(StatusMsg{Status: status, Err: err})

			select {
			case <-ctx.Done():
				p.Send(DoneMsg{})
				return
			case <-ticker.C:
			}
		}
	}()

	finalModel, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := finalModel.(Model); ok && fm.Err != nil {
		return fm.Err
	}
	return nil
}
