package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bokjirang/policybot/internal/storage/sqlite"
	"github.com/bokjirang/policybot/pkg/env"
	tea "github.com/charmbracelet/bubbletea"
)

// SaveEnvStep writes the collected configuration to <runtime>/.env.
type SaveEnvStep struct {
	runtimePath string
	err         error
	saved       bool
}

func NewSaveEnvStep(runtimePath string) Step {
	return &SaveEnvStep{runtimePath: runtimePath}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if err := saveEnv(s.runtimePath, state); err != nil {
		s.err = err
		return s, nil
	}
	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// saveEnv refuses to overwrite an existing file.
func saveEnv(runtimePath string, state *InstallState) error {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	content, err := env.Marshal(state.EnvVars)
	if err != nil {
		return err
	}
	return os.WriteFile(envPath, []byte(content), 0600)
}

// InitializeDatabaseStep creates the database and applies migrations.
type InitializeDatabaseStep struct {
	dbPath string
	err    error
	done   bool
}

func NewInitializeDatabaseStep(dbPath string) Step {
	return &InitializeDatabaseStep{dbPath: dbPath}
}

func (s *InitializeDatabaseStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *InitializeDatabaseStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.done {
		return nil, nil
	}

	// migration logs would draw over the alt screen
	db, err := sqlite.NewDB(context.Background(), s.dbPath)
	if err != nil {
		s.err = err
		return s, nil
	}
	if err := db.Close(); err != nil {
		s.err = err
		return s, nil
	}

	s.done = true
	return nil, nil
}

func (s *InitializeDatabaseStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.done {
		return "Database initialized successfully!\n"
	}
	return "Initializing database...\n"
}
