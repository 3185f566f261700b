package installer

// InstallState collects answers as env assignments.
type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

func (s *InstallState) Has(key string) bool {
	return s.EnvVars[key] != ""
}
