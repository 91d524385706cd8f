package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Issue state filter values accepted by --issues.
const (
	IssueStateAll    = "all"
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)

// Options is the resolved run configuration: config file and environment
// values overridden by command-line flags.
type Options struct {
	// User is the tracker API user name.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the tracker API password or token. May be left empty
	// in the config file and resolved from the system keyring.
	Password string `mapstructure:"password" yaml:"password"`

	// Repository is the "owner/name" repository to archive.
	Repository string `mapstructure:"repository" yaml:"repository"`

	// IssueState filters issues by state: all, open or closed.
	IssueState string `mapstructure:"issues" yaml:"issues"`

	// Output is the path of the mbox file to append to.
	Output string `mapstructure:"output" yaml:"output"`

	// Labels enables subject decoration with label names and a
	// [CLOSED] marker.
	Labels bool `mapstructure:"labels" yaml:"labels"`

	// ArchiveIssues enables archiving of the issue tracker.
	ArchiveIssues bool `mapstructure:"archive_issues" yaml:"archive_issues"`

	// ArchiveWiki enables archiving of the wiki.
	ArchiveWiki bool `mapstructure:"archive_wiki" yaml:"archive_wiki"`

	// Threads is the worker count for building issue threads.
	Threads int `mapstructure:"threads" yaml:"threads"`

	// IndexPath, when set, records every archived message in a SQLite
	// index database at this path.
	IndexPath string `mapstructure:"index" yaml:"index"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/issuebox/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "issuebox", "config.yaml")
}

// defaultOptions returns the built-in defaults matching the flag defaults.
func defaultOptions() *Options {
	return &Options{
		IssueState: IssueStateAll,
		Output:     "output.mbox",
		Threads:    2,
	}
}

// LoadOptions reads configuration from the given YAML file path using
// Viper, with ISSUEBOX_* environment variables taking precedence over
// file values. A missing file yields the defaults.
func LoadOptions(path string) (*Options, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("issuebox")

	// Unmarshal only sees keys viper knows about, so every key is bound
	// explicitly; AutomaticEnv alone never reaches the decoded struct.
	for _, key := range []string{
		"user", "password", "repository", "issues", "output",
		"labels", "archive_issues", "archive_wiki", "threads", "index",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	v.SetDefault("issues", IssueStateAll)
	v.SetDefault("output", "output.mbox")
	v.SetDefault("threads", 2)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		// A missing file still yields defaults and environment values.
	}

	opts := defaultOptions()
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return opts, nil
}

// Validate checks the options that must be present before any network or
// file activity. The password is validated separately after the keyring
// fallback has been applied.
func (o *Options) Validate() error {
	if o.User == "" {
		return fmt.Errorf("missing option: --user is required")
	}
	if o.Repository == "" {
		return fmt.Errorf("missing option: --repository is required")
	}
	switch o.IssueState {
	case IssueStateAll, IssueStateOpen, IssueStateClosed:
	default:
		return fmt.Errorf(
			"invalid --issues value %q: must be all, open or closed",
			o.IssueState,
		)
	}
	if o.Threads < 1 {
		return fmt.Errorf("invalid --threads value %d: must be at least 1", o.Threads)
	}
	return nil
}
