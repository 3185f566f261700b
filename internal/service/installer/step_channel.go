package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type channel struct {
	label    string
	telegram bool
}

// ChannelStep chooses the transports started next to the HTTP API.
type ChannelStep struct {
	choices []channel
	cursor  int
}

func NewChannelStep() Step {
	return &ChannelStep{
		choices: []channel{
			{label: "HTTP API only"},
			{label: "HTTP API + Telegram", telegram: true},
		},
	}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars["BOKJI_ENABLE_TELEGRAM"] = fmt.Sprint(s.choices[s.cursor].telegram)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the chat channels:\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+choice.label) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+choice.label) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
