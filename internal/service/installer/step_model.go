package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var perplexityModels = []list.Item{
	item{id: "sonar-pro", title: "sonar-pro", desc: "Default. Deeper search with more citations"},
	item{id: "sonar", title: "sonar", desc: "Faster and cheaper answers"},
	item{id: "sonar-reasoning-pro", title: "sonar-reasoning-pro", desc: "Multi-step reasoning over search results"},
}

// ModelStep picks the Perplexity model.
type ModelStep struct {
	list list.Model
}

func NewModelStep() Step {
	l := list.New(perplexityModels, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Perplexity Model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	s.list.SetSize(width, height-4)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if i, ok := s.list.SelectedItem().(item); ok {
			state.EnvVars["PERPLEXITY_MODEL"] = i.id
			return nil, nil
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	return s.list.View()
}
