package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"chatwave/config"
	"chatwave/provider"
)

// modelSelector is the provider model picker. models is the full list as
// fetched; filtered is what the cursor moves over.
type modelSelector struct {
	open      bool
	loading   bool
	models    []provider.ModelInfo
	filtered  []provider.ModelInfo
	selected  int
	filtering bool
	filter    textinput.Model
}

func newModelSelector() modelSelector {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.CharLimit = 64
	return modelSelector{filter: ti}
}

func (s *modelSelector) close() {
	s.open = false
	s.loading = false
	s.filtering = false
	s.filter.Blur()
	s.filter.SetValue("")
}

func (s *modelSelector) setModels(models []provider.ModelInfo, current string) {
	s.loading = false
	s.models = models
	s.filtered = models
	s.selected = 0
	for i, m := range models {
		if isCurrentModel(m, current) {
			s.selected = i
			break
		}
	}
}

func (s *modelSelector) applyFilter() {
	query := s.filter.Value()
	if query == "" {
		s.filtered = s.models
	} else {
		names := make([]string, len(s.models))
		for i, m := range s.models {
			names[i] = m.Name
		}
		matches := fuzzy.Find(query, names)
		s.filtered = make([]provider.ModelInfo, len(matches))
		for i, match := range matches {
			s.filtered[i] = s.models[match.Index]
		}
	}
	if s.selected >= len(s.filtered) {
		s.selected = max(len(s.filtered)-1, 0)
	}
}

func (s *modelSelector) move(delta int) {
	s.selected = min(max(s.selected+delta, 0), max(len(s.filtered)-1, 0))
}

func (s modelSelector) current() (provider.ModelInfo, bool) {
	if s.selected < 0 || s.selected >= len(s.filtered) {
		return provider.ModelInfo{}, false
	}
	return s.filtered[s.selected], true
}

func isCurrentModel(m provider.ModelInfo, current string) bool {
	return current != "" && (m.InternalName == current || m.Name == current)
}

// toggleModelSelector opens the picker and fetches the list, or closes it
func (a AppView) toggleModelSelector() (tea.Model, tea.Cmd) {
	if a.models.open {
		a.models.close()
		return a, nil
	}
	if a.dataModel.Provider == nil {
		flash := a.setFlash("The backend chooses the model")
		return a, flash
	}
	if a.activeTurns > 0 {
		flash := a.setFlash("Wait for the reply to finish")
		return a, flash
	}

	a.closeAllModals()
	a.models.open = true
	a.models.loading = true
	return a, a.dataModel.FetchModels()
}

func (a AppView) handleModelSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.models.filtering {
		switch key {
		case "esc":
			a.models.filtering = false
			a.models.filter.Blur()
			a.models.filter.SetValue("")
			a.models.applyFilter()
			return a, nil
		case "enter":
			return a.selectModel()
		case a.kb.PrimaryKey("j"), "down":
			a.models.move(1)
			return a, nil
		case a.kb.PrimaryKey("k"), "up":
			a.models.move(-1)
			return a, nil
		}

		var cmd tea.Cmd
		a.models.filter, cmd = a.models.filter.Update(msg)
		a.models.applyFilter()
		return a, cmd
	}

	switch key {
	case "esc":
		a.models.close()
		return a, nil
	case "/":
		if a.models.loading {
			return a, nil
		}
		a.models.filtering = true
		a.models.filter.SetValue("")
		return a, a.models.filter.Focus()
	case a.kb.GetActionKey("refresh"):
		a.models.loading = true
		return a, a.dataModel.FetchModels()
	case "j", "down":
		a.models.move(1)
		return a, nil
	case "k", "up":
		a.models.move(-1)
		return a, nil
	case "enter":
		return a.selectModel()
	}
	return a, nil
}

func (a AppView) selectModel() (tea.Model, tea.Cmd) {
	info, ok := a.models.current()
	if !ok {
		return a, nil
	}
	if a.activeTurns > 0 {
		flash := a.setFlash("Wait for the reply to finish")
		return a, flash
	}
	a.models.close()
	return a, a.dataModel.SwitchModel(info)
}

func (a AppView) handleModelMessage(msg tea.Msg) (AppView, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case modelsListMsg:
		if !a.models.open {
			return a, nil, true
		}
		if msg.Err != nil {
			a.models.close()
			a.showAcknowledge("⚠ Models Unavailable", "Could not list models.\n\n"+msg.Err.Error(), ModalTypeWarning)
			return a, nil, true
		}
		a.models.setModels(msg.Models, a.dataModel.Provider.GetModel())
		a.models.applyFilter()
		return a, nil, true

	case modelSwitchedMsg:
		if msg.Err != nil {
			config.Logf("[UI] model choice not saved: %v", msg.Err)
		}
		flash := a.setFlash("Model: " + msg.Model)
		return a, flash, true
	}
	return a, nil, false
}

func renderModelSelector(s modelSelector, currentModel string, width, height int) string {
	modalWidth := min(width-10, 80)
	modalHeight := height - 6

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render("Select Model")

	var header string
	switch {
	case s.filtering:
		header = s.filter.View()
	case s.loading:
		header = "Loading models..."
	case len(s.filtered) == len(s.models):
		header = fmt.Sprintf("%d models", len(s.models))
	default:
		header = fmt.Sprintf("%d of %d models", len(s.filtered), len(s.models))
	}

	headerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(header)

	emptyLine := strings.Repeat(" ", modalWidth)
	lines := []string{emptyLine}
	maxLines := max(modalHeight-8, 1)

	if len(s.filtered) == 0 && !s.loading {
		emptyMsg := "No models available"
		if s.filtering {
			emptyMsg = "No matches found"
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true).
			Align(lipgloss.Center).
			Width(modalWidth).
			Render(emptyMsg))
	}

	modelLines := make([]string, len(s.filtered))
	for i, m := range s.filtered {
		modelLines[i] = renderModelLine(m, i == s.selected, currentModel, modalWidth)
	}
	lines = append(lines, scrollWindow(modelLines, s.selected, maxLines)...)
	lines = append(lines, emptyLine)

	footerText := FormatFooter("/", "Filter", "j/k", "Navigate", "Enter", "Select", "Esc", "Exit")
	if s.filtering {
		footerText = FormatFooter("Type", "to filter", "↑/↓", "Navigate", "Enter", "Select", "Esc", "Cancel")
	}
	footerSection := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footerText)

	sections := append([]string{titleSection, headerSection}, lines...)
	sections = append(sections, footerSection)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n"))
}

func renderModelLine(m provider.ModelInfo, selected bool, currentModel string, width int) string {
	indicator := "  "
	if selected {
		indicator = "▶ "
	}

	marker := ""
	isCurrent := isCurrentModel(m, currentModel)
	if isCurrent {
		marker = " (current)"
	}
	size := formatSize(m.Size)

	name := m.Name
	maxName := width - 20
	if runes := []rune(name); len(runes) > maxName {
		name = string(runes[:maxName-3]) + "..."
	}

	spacing := max(width-lipgloss.Width(indicator+name+marker+size)-4, 1)
	line := indicator + name + marker + strings.Repeat(" ", spacing) + size

	style := lipgloss.NewStyle()
	if selected {
		style = style.Foreground(successColor).Bold(true)
	} else if isCurrent {
		style = style.Foreground(accentColor).Bold(true)
	}
	return lipgloss.NewStyle().Width(width).Render(style.Render(line))
}

// formatSize gives a human size, or "" when the provider reports none
func formatSize(bytes int64) string {
	if bytes == 0 {
		return ""
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
