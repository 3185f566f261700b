package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInputStep(t *testing.T) {
	t.Run("stores the typed value", func(t *testing.T) {
		state := NewInstallState()
		step := NewInputStep("PERPLEXITY_API_KEY", "key", "", secret())

		next, _ := step.Update(typeText("pplx-123"), state, 80, 24)
		require.NotNil(t, next)
		next, _ = next.Update(enter, state, 80, 24)

		assert.Nil(t, next)
		assert.Equal(t, "pplx-123", state.EnvVars["PERPLEXITY_API_KEY"])
	})

	t.Run("required value blocks", func(t *testing.T) {
		state := NewInstallState()
		step := NewInputStep("TELEGRAM_TOKEN", "token", "")

		next, _ := step.Update(enter, state, 80, 24)
		assert.NotNil(t, next)
		assert.False(t, state.Has("TELEGRAM_TOKEN"))
		assert.Contains(t, next.View(state), "TELEGRAM_TOKEN is required")
	})

	t.Run("validation error blocks", func(t *testing.T) {
		state := NewInstallState()
		step := NewInputStep("EMAIL_PORT", "port", "", validate(validatePort))

		step.Update(typeText("99999"), state, 80, 24)
		next, _ := step.Update(enter, state, 80, 24)
		assert.NotNil(t, next)
		assert.False(t, state.Has("EMAIL_PORT"))
	})

	t.Run("skipped when condition fails", func(t *testing.T) {
		state := NewInstallState()
		step := NewInputStep("EMAIL_PORT", "port", "", when(func(s *InstallState) bool { return s.Has("EMAIL_HOST") }))

		next, _ := step.Update(typeText("587"), state, 80, 24)
		assert.Nil(t, next)
		assert.False(t, state.Has("EMAIL_PORT"))
	})
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePort("587"))
	assert.Error(t, validatePort("0"))
	assert.Error(t, validatePort("smtp"))

	assert.NoError(t, validateEmail("a@b.kr"))
	assert.Error(t, validateEmail("nobody"))

	assert.NoError(t, validateChatIDs("1, -100200"))
	assert.Error(t, validateChatIDs("1,x"))
}

func TestFinalize(t *testing.T) {
	state := NewInstallState()
	state.EnvVars["BOKJI_ENABLE_TELEGRAM"] = "true"
	state.EnvVars["EMAIL_PORT"] = "587"

	finalize(state)

	assert.Equal(t, "false", state.EnvVars["BOKJI_ENABLE_TELEGRAM"])
	assert.NotContains(t, state.EnvVars, "EMAIL_PORT")
	assert.Len(t, state.EnvVars["BOKJI_INTERNAL_TOKEN"], 36)

	token := state.EnvVars["BOKJI_INTERNAL_TOKEN"]
	finalize(state)
	assert.Equal(t, token, state.EnvVars["BOKJI_INTERNAL_TOKEN"])
}

func TestSaveEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	state := NewInstallState()
	state.EnvVars["PERPLEXITY_API_KEY"] = "pplx-123"
	state.EnvVars["EMAIL_HOST"] = ""

	require.NoError(t, saveEnv(dir, state))

	envPath := filepath.Join(dir, ".env")
	info, err := os.Stat(envPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	vars, err := godotenv.Read(envPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"PERPLEXITY_API_KEY": "pplx-123"}, vars)

	assert.Error(t, saveEnv(dir, state), "existing .env must not be overwritten")
}

func TestInitializeDatabaseStep(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bokjirang.db")
	step := NewInitializeDatabaseStep(dbPath)

	next, _ := step.Update(nextMsg{}, NewInstallState(), 80, 24)
	assert.Nil(t, next)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}
