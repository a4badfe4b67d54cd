package bridge

import "time"

// Config holds the daemon's environment-sourced configuration. Zero-value
// timeout overrides mean "use the command's built-in default" rather than
// "wait forever" - see CommandTimeouts. ProjectPath has no envDefault and
// is not marked required: the CLI entrypoint accepts it as a flag too and
// decides the final value (flag, then environment, then working directory)
// before the daemon starts. Timeout overrides are whole seconds.
type Config struct {
	ProjectPath string `env:"UNITYCTL_PROJECT"`
	Port        int    `env:"UNITYCTL_PORT" envDefault:"0"`

	TimeoutPlayEnter        int `env:"UNITYCTL_TIMEOUT_PLAY_ENTER"`
	TimeoutPlayExit         int `env:"UNITYCTL_TIMEOUT_PLAY_EXIT"`
	TimeoutCompileScripts   int `env:"UNITYCTL_TIMEOUT_COMPILE_SCRIPTS"`
	TimeoutAssetImport      int `env:"UNITYCTL_TIMEOUT_ASSET_IMPORT"`
	TimeoutAssetReimportAll int `env:"UNITYCTL_TIMEOUT_ASSET_REIMPORT_ALL"`
	TimeoutAssetRefresh     int `env:"UNITYCTL_TIMEOUT_ASSET_REFRESH"`
	TimeoutTestRun          int `env:"UNITYCTL_TIMEOUT_TEST_RUN"`

	LogCapacity            int           `env:"UNITYCTL_LOG_CAPACITY" envDefault:"1000"`
	SubscriptionBufferSize int           `env:"UNITYCTL_LOG_SUB_BUFFER" envDefault:"256"`
	ReloadGrace            time.Duration `env:"UNITYCTL_RELOAD_GRACE" envDefault:"60s"`
}

// CommandTimeouts converts the per-command environment overrides into the
// map PolicyTable merges over its built-in defaults. A zero duration is
// treated as "not set" and omitted so the built-in default survives.
func (c Config) CommandTimeouts() map[string]time.Duration {
	overrides := map[string]int{
		"play.enter":        c.TimeoutPlayEnter,
		"play.exit":         c.TimeoutPlayExit,
		"compile.scripts":   c.TimeoutCompileScripts,
		"asset.import":      c.TimeoutAssetImport,
		"asset.reimportAll": c.TimeoutAssetReimportAll,
		"asset.refresh":     c.TimeoutAssetRefresh,
		"test.run":          c.TimeoutTestRun,
	}

	out := make(map[string]time.Duration, len(overrides))
	for cmd, secs := range overrides {
		if secs > 0 {
			out[cmd] = time.Duration(secs) * time.Second
		}
	}
	return out
}
