package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/mysqlset/internal/inventory"
)

// Model is the Bubble Tea model for the status dashboard.
type Model struct {
	Name      string
	Namespace string

	Status     *inventory.Status
	FetchErr   error
	LastUpdate time.Time

	// ExitWhenReady ends the program once every replica is ready.
	ExitWhenReady bool

	StartTime    time.Time
	SpinnerFrame int

	Width  int
	Height int
	Err    error
	Done   bool
}

// NewWatchModel creates a model for `status --watch`.
func NewWatchModel(name, namespace string) Model {
	return Model{
		Name:      name,
		Namespace: namespace,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Done = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StatusMsg:
		m.LastUpdate = time.Now()
		if msg.Err != nil {
			// Keep the last good snapshot on screen.
			m.FetchErr = msg.Err
			return m, nil
		}
		m.FetchErr = nil
		m.Status = msg.Status
		if m.ExitWhenReady && m.Status != nil && m.Status.Ready() {
			m.Done = true
			return m, tea.Quit
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
