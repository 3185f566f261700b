package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep asks for one env value.
type InputStep struct {
	input    textinput.Model
	envKey   string
	title    string
	optional bool
	// when returns false to skip the step entirely
	when     func(*InstallState) bool
	validate func(string) error
	err      error
	started  bool
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func optional() inputOption {
	return func(s *InputStep) { s.optional = true }
}

func when(fn func(*InstallState) bool) inputOption {
	return func(s *InputStep) { s.when = fn }
}

func validate(fn func(string) error) inputOption {
	return func(s *InputStep) { s.validate = fn }
}

func defaultValue(v string) inputOption {
	return func(s *InputStep) { s.input.SetValue(v) }
}

func NewInputStep(envKey, title, placeholder string, opts ...inputOption) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 48
	ti.Placeholder = placeholder

	s := &InputStep{
		input:  ti,
		envKey: envKey,
		title:  title,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.started {
		s.started = true
		if s.when != nil && !s.when(state) {
			return nil, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && !s.optional {
			s.err = fmt.Errorf("%s is required", s.envKey)
			return s, nil
		}
		if value != "" && s.validate != nil {
			if err := s.validate(value); err != nil {
				s.err = err
				return s, nil
			}
		}
		state.EnvVars[s.envKey] = value
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title)
	if s.optional {
		b.WriteString(" (optional, press enter to skip)")
	}
	b.WriteString(":\n\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
