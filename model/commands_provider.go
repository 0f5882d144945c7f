package model

import (
	"cmp"
	"context"
	"errors"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"chatwave/config"
	"chatwave/provider"
)

// ErrNoProvider is returned by model commands when the backend answers
var ErrNoProvider = errors.New("no model provider configured")

// FetchModels lists the provider's models, sorted by name
func (m *Model) FetchModels() tea.Cmd {
	p := m.Provider
	return func() tea.Msg {
		if p == nil {
			return ModelsListMsg{Err: ErrNoProvider}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		models, err := p.ListModels(ctx)
		if err != nil {
			config.Logf("[Model] failed to list models: %v", err)
			return ModelsListMsg{Err: err}
		}
		slices.SortFunc(models, func(a, b provider.ModelInfo) int {
			return cmp.Compare(a.Name, b.Name)
		})
		return ModelsListMsg{Models: models}
	}
}

// SwitchModel makes info the provider's active model straight away; the
// returned command remembers the choice for the next start. Callers must not
// switch while a turn is waiting on the provider.
func (m *Model) SwitchModel(info provider.ModelInfo) tea.Cmd {
	if m.Provider == nil {
		return func() tea.Msg { return ModelSwitchedMsg{Err: ErrNoProvider} }
	}

	name := cmp.Or(info.InternalName, info.Name)
	m.Provider.SetModel(name)
	display := m.Provider.GetDisplayName()
	config.Logf("[Model] switched model to %s", name)

	state := m.State
	return func() tea.Msg {
		var err error
		if state != nil {
			err = state.SetModel(name)
		}
		return ModelSwitchedMsg{Model: display, Err: err}
	}
}

func (m *Model) restoreModel() {
	if m.State == nil || m.Provider == nil {
		return
	}
	name, err := m.State.Model()
	if err != nil {
		config.Logf("[Model] failed to read model: %v", err)
		return
	}
	if name != "" {
		m.Provider.SetModel(name)
	}
}
