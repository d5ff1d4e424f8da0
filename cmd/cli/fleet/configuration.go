package fleet

const (
	syncConfigurationKeyConstant           = "sync"
	initConfigurationKeyConstant           = "init"
	configurationNonInteractiveKeyConstant = "non_interactive"
	configurationDryRunKeyConstant         = "dry_run"
	configurationParallelClonesKeyConstant = "parallel_clones"
	configurationForceKeyConstant          = "force"
	defaultParallelClonesConstant          = 4
)

// ToolsConfiguration captures fleet command configuration sections.
type ToolsConfiguration struct {
	Sync SyncConfiguration `mapstructure:"sync"`
	Init InitConfiguration `mapstructure:"init"`
}

// SyncConfiguration describes configuration values for sync.
type SyncConfiguration struct {
	NonInteractive bool `mapstructure:"non_interactive"`
	DryRun         bool `mapstructure:"dry_run"`
	ParallelClones int  `mapstructure:"parallel_clones"`
}

// InitConfiguration describes configuration values for init.
type InitConfiguration struct {
	Force bool `mapstructure:"force"`
}

// DefaultToolsConfiguration returns baseline configuration values for fleet commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Sync: SyncConfiguration{
			NonInteractive: false,
			DryRun:         false,
			ParallelClones: defaultParallelClonesConstant,
		},
		Init: InitConfiguration{
			Force: false,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for fleet commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	return map[string]any{
		rootKey + "." + syncConfigurationKeyConstant + "." + configurationNonInteractiveKeyConstant: defaults.Sync.NonInteractive,
		rootKey + "." + syncConfigurationKeyConstant + "." + configurationDryRunKeyConstant:         defaults.Sync.DryRun,
		rootKey + "." + syncConfigurationKeyConstant + "." + configurationParallelClonesKeyConstant: defaults.Sync.ParallelClones,
		rootKey + "." + initConfigurationKeyConstant + "." + configurationForceKeyConstant:          defaults.Init.Force,
	}
}

// sanitize normalizes sync configuration values.
func (configuration SyncConfiguration) sanitize() SyncConfiguration {
	sanitized := configuration
	if sanitized.ParallelClones < 0 {
		sanitized.ParallelClones = 0
	}
	return sanitized
}

// sanitize normalizes init configuration values.
func (configuration InitConfiguration) sanitize() InitConfiguration {
	return configuration
}
