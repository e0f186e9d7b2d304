// Package trackercfg resolves the two layers of configuration the CLI
// and engine need: a per-project config.yaml scalar (issue-prefix) and
// process-level settings sourced from flags, environment, and an
// optional user config file via viper.
package trackercfg

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFolderName is the tracker data directory created under a project.
	DefaultFolderName = ".tracker"
	// DefaultIssuePrefix is used when no config.yaml overrides it.
	DefaultIssuePrefix = "tracker"
)

// ProjectConfig holds the per-project settings: where tracker data
// lives, what prefix new issue IDs get, and who authored writes that
// don't specify an explicit actor.
type ProjectConfig struct {
	FolderName  string `yaml:"-"`
	IssuePrefix string `yaml:"issue-prefix,omitempty"`
	Actor       string `yaml:"-"`
}

// projectConfigFile is the subset of config.yaml this engine recognizes;
// every other key is ignored on read and never written.
type projectConfigFile struct {
	IssuePrefix string `yaml:"issue-prefix"`
}

// Default returns the zero-config defaults, with Actor populated from
// `git config user.name` when available.
func Default() ProjectConfig {
	return ProjectConfig{
		FolderName:  DefaultFolderName,
		IssuePrefix: DefaultIssuePrefix,
		Actor:       gitUserName(),
	}
}

// Load reads <projectPath>/<folder>/config.yaml if present and overlays
// its recognized keys onto the defaults. A missing or unparsable file is
// not an error — the defaults are returned as-is.
func Load(projectPath, folder string) ProjectConfig {
	cfg := Default()
	if folder != "" {
		cfg.FolderName = folder
	}

	path := filepath.Join(projectPath, cfg.FolderName, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var file projectConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg
	}
	if file.IssuePrefix != "" {
		cfg.IssuePrefix = file.IssuePrefix
	}
	return cfg
}

func gitUserName() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
