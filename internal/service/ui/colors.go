// Package ui holds the terminal styles shared by the CLI help and the
// installer.
package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors so the palette follows the user's terminal theme.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// Policy card rendering in the terminal chat
	CardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	SourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)
