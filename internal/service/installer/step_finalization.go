package installer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// FinalizationStep fills derived values.
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) {
	if !state.Has("TELEGRAM_TOKEN") {
		state.EnvVars["BOKJI_ENABLE_TELEGRAM"] = "false"
	}
	if !state.Has("BOKJI_INTERNAL_TOKEN") {
		state.EnvVars["BOKJI_INTERNAL_TOKEN"] = uuid.NewString()
	}
	if !state.Has("EMAIL_HOST") {
		for _, key := range []string{"EMAIL_PORT", "EMAIL_USER", "EMAIL_PASS", "MAIL_FROM"} {
			delete(state.EnvVars, key)
		}
	}
}
