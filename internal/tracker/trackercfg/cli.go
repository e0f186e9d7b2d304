package trackercfg

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CLISettings is the process-level layer: values a flag may leave unset,
// resolved from environment variables (TRACKER_*) and an optional user
// config file at ~/.config/tracker/config.yaml, read with viper so flags
// still win when explicitly passed.
type CLISettings struct {
	v *viper.Viper
}

// NewCLISettings builds a viper instance bound to the TRACKER_ env prefix
// and the user config file, if any. A missing config file is not an error.
func NewCLISettings() *CLISettings {
	v := viper.New()
	v.SetEnvPrefix("tracker")
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("actor", "")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "tracker"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err == nil {
			v.WatchConfig()
		}
	}

	return &CLISettings{v: v}
}

// JSON reports whether JSON output should default to on.
func (c *CLISettings) JSON() bool { return c.v.GetBool("json") }

// Actor returns the TRACKER_ACTOR override, or empty if unset.
func (c *CLISettings) Actor() string { return c.v.GetString("actor") }
