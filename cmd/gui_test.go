package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/afero"

	"launcher-core/db"
)

// TestModelInitialization tests that the Model initializes correctly
func TestModelInitialization(t *testing.T) {
	m := Model{
		selectedIndex: 0,
		loading:       true,
		width:         80,
		height:        24,
	}

	if m.selectedIndex != 0 {
		t.Fatal("selectedIndex not initialized correctly")
	}
	if !m.loading {
		t.Fatal("loading should be true initially")
	}
	if !strings.Contains(m.View(), "Loading installs") {
		t.Fatalf("loading view = %q", m.View())
	}
}

// TestTruncateFunction tests the truncate helper function
func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"Hello World", 5, "He..."},
		{"Hi", 5, "Hi"},
		{"Test", 4, "Test"},
		{"LongString", 7, "Long..."},
		{"", 5, ""},
		{"原神原神原神", 7, "原神..."},
		{"崩坏：星穹铁道", 20, "崩坏：星穹铁道"},
	}

	for _, test := range tests {
		result := truncate(test.input, test.maxLen)
		if result != test.expected {
			t.Fatalf("truncate(%q, %d) = %q, expected %q", test.input, test.maxLen, result, test.expected)
		}
		if !utf8.ValidString(result) || ansi.StringWidth(result) > test.maxLen {
			t.Fatalf("truncate(%q, %d) = %q is not valid text within the width", test.input, test.maxLen, result)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestModelNavigation tests navigation within the model
func TestModelNavigation(t *testing.T) {
	var model tea.Model = Model{
		installs: []InstallInfo{
			{Name: "Genshin Impact"},
			{Name: "Honkai: Star Rail"},
			{Name: "Zenless Zone Zero"},
		},
	}

	steps := []struct {
		key  string
		want int
	}{
		{"down", 1},
		{"j", 2},
		{"down", 2}, // stops at the last row
		{"up", 1},
		{"k", 0},
		{"k", 0}, // stops at the first row
	}
	for _, s := range steps {
		model, _ = model.Update(key(s.key))
		if got := model.(Model).selectedIndex; got != s.want {
			t.Fatalf("after %q selectedIndex = %d, want %d", s.key, got, s.want)
		}
	}

	model, _ = model.Update(key("enter"))
	if !model.(Model).showDetails {
		t.Fatal("enter should show details")
	}
}

func TestInstallsLoadedSortsByName(t *testing.T) {
	var model tea.Model = Model{loading: true, selectedIndex: 5}
	model, _ = model.Update(installsLoadedMsg{installs: []InstallInfo{
		{Name: "zenless zone zero", Status: "ready"},
		{Name: "Genshin Impact", Status: "missing"},
	}})

	m := model.(Model)
	if m.loading {
		t.Fatal("loading should be false after installs arrive")
	}
	if m.installs[0].Name != "Genshin Impact" {
		t.Errorf("installs not sorted: %v", m.installs)
	}
	if m.selectedIndex != 0 {
		t.Errorf("selectedIndex = %d, want reset to 0", m.selectedIndex)
	}
	view := m.View()
	if !strings.Contains(view, "Genshin Impact") || !strings.Contains(view, "missing") {
		t.Errorf("view missing rows:\n%s", view)
	}
}

// TestEmptyInstallList tests behavior with empty install list
func TestEmptyInstallList(t *testing.T) {
	m := Model{
		selectedIndex: 0,
		installs:      []InstallInfo{},
		loading:       false,
	}

	view := m.View()
	if view == "" {
		t.Fatal("View should return a message for empty install list")
	}
}

func TestErrorView(t *testing.T) {
	var model tea.Model = Model{loading: true}
	model, _ = model.Update(errorMsg("database locked"))
	if view := model.View(); !strings.Contains(view, "database locked") {
		t.Errorf("view = %q", view)
	}
}

func TestInstallInfosStatus(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/games/genshin", 0755)

	infos := installInfos([]db.Install{
		{ID: "a", Name: "Genshin Impact", Directory: "/games/genshin", RunnerVersion: "wine-9.0"},
		{ID: "b", Name: "Honkai Impact 3rd", Directory: "/games/gone"},
	}, fs, nil)

	if len(infos) != 2 {
		t.Fatalf("got %d rows", len(infos))
	}
	if infos[0].Status != "ready" || infos[0].RunnerVersion != "wine-9.0" {
		t.Errorf("row a = %+v", infos[0])
	}
	if infos[1].Status != "missing" {
		t.Errorf("row b status = %q, want missing", infos[1].Status)
	}
}
