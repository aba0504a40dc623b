package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launcher-core/db"
	"launcher-core/logger"
	"launcher-core/relocate"
	"launcher-core/ui"
)

// guiCmd represents the gui command
var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Browse installs interactively",
	Long:  `Launch an interactive TUI to browse installs and check their directories.`,
	Run: func(_ *cobra.Command, _ []string) {
		runGUI()
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

// InstallInfo is one row of the installs browser.
type InstallInfo struct {
	ID            string
	Name          string
	Version       string
	Directory     string
	RunnerVersion string
	DxvkVersion   string
	Status        string // "ready", "missing", "moving"
}

// Model represents the state of the TUI
type Model struct {
	installs      []InstallInfo
	selectedIndex int
	showDetails   bool
	loading       bool
	error         string
	message       string
	app           *app
	width         int
	height        int
	spinnerFrame  int
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadInstalls(),
		tickSpinner(),
	)
}

func tickSpinner() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case installsLoadedMsg:
		m.handleInstallsLoaded(msg)
	case spinnerTickMsg:
		return m.handleSpinnerTick()
	case errorMsg:
		m.error = string(msg)
		m.loading = false
	case clearMessageMsg:
		m.message = ""
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.selectedIndex < len(m.installs)-1 {
			m.selectedIndex++
		}
	case "enter", " ":
		if len(m.installs) > 0 {
			m.showDetails = !m.showDetails
		}
	case "r":
		if !m.loading && m.app != nil {
			m.loading = true
			m.message = "Reloaded"
			return m, tea.Batch(m.loadInstalls(), tickSpinner(), tea.Tick(3*time.Second, func(time.Time) tea.Msg {
				return clearMessageMsg{}
			}))
		}
	}
	return m, nil
}

func (m *Model) handleInstallsLoaded(msg installsLoadedMsg) {
	m.installs = msg.installs
	m.loading = false
	sort.SliceStable(m.installs, func(i, j int) bool {
		return strings.ToLower(m.installs[i].Name) < strings.ToLower(m.installs[j].Name)
	})
	if m.selectedIndex >= len(m.installs) {
		m.selectedIndex = 0
	}
}

func (m Model) handleSpinnerTick() (tea.Model, tea.Cmd) {
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
	if m.loading {
		return m, tickSpinner()
	}
	return m, nil
}

func (m Model) View() string {
	if m.loading {
		return m.renderLoadingScreen()
	}

	if m.error != "" {
		return fmt.Sprintf("Error: %s\n", m.error)
	}

	if len(m.installs) == 0 {
		return "No installs yet.\n"
	}

	var output string
	output += renderHeader()
	output += "\n"

	for i, in := range m.installs {
		output += m.renderInstallRow(i, in)
		output += "\n"
	}

	if m.showDetails {
		output += "\n" + renderDetails(m.installs[m.selectedIndex])
	}

	output += "\n" + renderFooter()

	if m.message != "" {
		output += "\n" + ui.Colorize(m.message, ui.Green)
	}

	return output
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m Model) renderLoadingScreen() string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ui.Blue).
		Bold(true)

	return loadingStyle.Render(fmt.Sprintf("%s Loading installs...", spinnerFrames[m.spinnerFrame])) + "\n"
}

func renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.Blue).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("%-40s %-12s %-20s %-10s", "Name", "Version", "Runner", "Status"))
}

func renderFooter() string {
	footerStyle := lipgloss.NewStyle().
		Foreground(ui.Grey).
		Italic(true)

	return footerStyle.Render("↑/k: up  ↓/j: down  enter: details  r: reload  q: quit")
}

func (m Model) renderInstallRow(index int, in InstallInfo) string {
	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(ui.Grey).
			Bold(true)
	}

	// Pad status before applying color to maintain column alignment
	coloredStatus := ui.Colorize(fmt.Sprintf("%-10s", in.Status), ui.StatusColor(in.Status))

	row := fmt.Sprintf("%-40s %-12s %-20s %s",
		truncate(in.Name, 38),
		truncate(in.Version, 10),
		truncate(in.RunnerVersion, 18),
		coloredStatus,
	)

	return rowStyle.Render(row)
}

func renderDetails(in InstallInfo) string {
	label := lipgloss.NewStyle().Foreground(ui.Grey)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Render("id:       "), in.ID)
	fmt.Fprintf(&b, "%s %s\n", label.Render("directory:"), in.Directory)
	fmt.Fprintf(&b, "%s %s\n", label.Render("dxvk:     "), in.DxvkVersion)
	return b.String()
}

// truncate shortens s to maxLen terminal cells, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	return ansi.Truncate(s, maxLen, "...")
}

// Message types
type installsLoadedMsg struct {
	installs []InstallInfo
}

type errorMsg string

type spinnerTickMsg struct{}

type clearMessageMsg struct{}

func (m Model) loadInstalls() tea.Cmd {
	return func() tea.Msg {
		installs, err := m.app.store.ListInstalls(context.Background())
		if err != nil {
			logger.Log.Errorw("Failed to load installs", zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to load installs: %s", describe(err)))
		}
		return installsLoadedMsg{installs: installInfos(installs, m.app.fs, m.app.relocator)}
	}
}

// installInfos builds browser rows. An install whose game directory is gone
// is "missing"; one with a game relocation in flight is "moving".
func installInfos(installs []db.Install, fs afero.Fs, r *relocate.Relocator) []InstallInfo {
	infos := make([]InstallInfo, 0, len(installs))
	for _, in := range installs {
		status := "ready"
		if ok, _ := afero.DirExists(fs, in.Directory); !ok {
			status = "missing"
		}
		if r != nil && r.Running(in.ID, relocate.Game) {
			status = "moving"
		}
		infos = append(infos, InstallInfo{
			ID:            in.ID,
			Name:          in.Name,
			Version:       in.Version,
			Directory:     in.Directory,
			RunnerVersion: in.RunnerVersion,
			DxvkVersion:   in.DxvkVersion,
			Status:        status,
		})
	}
	return infos
}

func runGUI() {
	a := bootstrap()
	defer a.Close()

	m := Model{
		selectedIndex: 0,
		loading:       true,
		app:           a,
		width:         80,
		height:        24,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Errorw("Failed to run GUI", zap.Error(err))
	}
}
