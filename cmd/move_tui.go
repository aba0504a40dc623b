package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"launcher-core/relocate"
	"launcher-core/ui"
)

// moveEventMsg carries the relocation outcome into the program.
type moveEventMsg relocate.Event

// MoveModel shows a running relocation until its outcome event arrives.
type MoveModel struct {
	spinner spinner.Model
	events  <-chan relocate.Event
	cancel  func()

	kind        relocate.Kind
	name        string
	source      string
	destination string

	cancelling bool
	done       bool
	result     relocate.Event
}

func newMoveModel(task *relocate.Task, events <-chan relocate.Event) MoveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return MoveModel{
		spinner:     s,
		events:      events,
		cancel:      task.Cancel,
		kind:        task.Kind,
		name:        task.InstallName,
		source:      task.Source,
		destination: task.Destination,
	}
}

func (m MoveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m MoveModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return moveEventMsg{Status: relocate.StatusFailed, Error: "event stream closed"}
		}
		return moveEventMsg(e)
	}
}

func (m MoveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			// The copy cleans up after itself and reports a failed event.
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case moveEventMsg:
		m.done = true
		m.result = relocate.Event(msg)
		return m, tea.Quit
	}

	return m, nil
}

func (m MoveModel) View() string {
	if !m.done {
		status := fmt.Sprintf("Copying %s of %s", m.kind, m.name)
		if m.cancelling {
			status = "Cancelling, removing copied files..."
		}
		return fmt.Sprintf("\n %s %s\n\n   from %s\n   to   %s\n\n", m.spinner.View(), status, m.source, m.destination)
	}

	status := string(m.result.Status)
	symbol := "✓"
	if m.result.Status != relocate.StatusCompleted {
		symbol = "✗"
	}
	s := fmt.Sprintf("\n %s %s %s\n", ui.Colorize(symbol, ui.StatusColor(status)), m.kind, ui.Colorize(status, ui.StatusColor(status)))
	if m.result.Error != "" {
		s += ui.Colorize("   "+m.result.Error, ui.Red) + "\n"
	} else {
		s += fmt.Sprintf("   now at %s\n", m.result.Destination)
	}
	return s + "\n"
}
