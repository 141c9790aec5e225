package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/critic"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces every config key in the environment: CRITIC_MODEL,
// CRITIC_DRAFT_DIR, and so on.
const envPrefix = "CRITIC"

// config is the resolved startup configuration. Precedence, lowest first:
// defaults, config file, CRITIC_* environment, flags.
type config struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	DraftDir     string `mapstructure:"draft_dir"`
	ReferenceDir string `mapstructure:"reference_dir"`
	Budget       int    `mapstructure:"budget"`
	PerFileCap   int    `mapstructure:"per_file_cap"`
	Mode         string `mapstructure:"mode"`
	Recursive    bool   `mapstructure:"recursive"`
	Session      string `mapstructure:"session"`
	SystemPrompt string `mapstructure:"system_prompt"`
	LogFile      string `mapstructure:"log_file"`
	LogLevel     string `mapstructure:"log_level"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"api-key":       "api_key",
	"model":         "model",
	"draft":         "draft_dir",
	"ref":           "reference_dir",
	"budget":        "budget",
	"per-file-cap":  "per_file_cap",
	"mode":          "mode",
	"recursive":     "recursive",
	"session":       "session",
	"system-prompt": "system_prompt",
	"log-file":      "log_file",
	"log-level":     "log_level",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("critic", pflag.ContinueOnError)
	fs.String("config", "", "config file (default ~/.critic/config.yaml)")
	fs.String("api-key", "", "API key (default from GEMINI_API_KEY or ANTHROPIC_API_KEY)")
	fs.String("model", critic.DefaultModel, "model id; claude-* models use Anthropic")
	fs.String("draft", "", "folder with your draft")
	fs.String("ref", "", "folder with style reference texts")
	fs.Int("budget", critic.DefaultBudget, "max characters sampled per folder")
	fs.Int("per-file-cap", critic.DefaultPerFileCap, "characters kept from each sampled file")
	fs.String("mode", string(critic.ModeSample), "context mode: sample or full")
	fs.Bool("recursive", false, "include files in subfolders")
	fs.String("session", "", "session snapshot file (default ~/.critic/session.json)")
	fs.String("system-prompt", "", "file replacing the built-in editor persona")
	fs.String("log-file", "", "log file (default ~/.critic/critic.log)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	return fs
}

// loadConfig resolves the configuration from args, the optional config file
// and the environment. home anchors the default paths.
func loadConfig(args []string, home string, getenv func(string) string) (config, error) {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return config{}, err
	}

	dataDir := filepath.Join(home, ".critic")
	v := viper.New()
	v.SetDefault("model", critic.DefaultModel)
	v.SetDefault("budget", critic.DefaultBudget)
	v.SetDefault("per_file_cap", critic.DefaultPerFileCap)
	v.SetDefault("mode", string(critic.ModeSample))
	v.SetDefault("recursive", false)
	v.SetDefault("session", filepath.Join(dataDir, "session.json"))
	v.SetDefault("log_file", filepath.Join(dataDir, "critic.log"))
	v.SetDefault("log_level", "info")
	v.SetDefault("api_key", "")
	v.SetDefault("draft_dir", "")
	v.SetDefault("reference_dir", "")
	v.SetDefault("system_prompt", "")

	path, err := flags.GetString("config")
	if err != nil {
		return config{}, fmt.Errorf("config flag: %w", err)
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dataDir, "config.yaml")
	}
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(cfg.Model, getenv)
	}
	cfg.DraftDir = expandHome(cfg.DraftDir, home)
	cfg.ReferenceDir = expandHome(cfg.ReferenceDir, home)
	cfg.Session = expandHome(cfg.Session, home)
	cfg.SystemPrompt = expandHome(cfg.SystemPrompt, home)
	cfg.LogFile = expandHome(cfg.LogFile, home)

	if err := cfg.Settings().Validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// Settings returns the runtime-mutable part of the configuration.
func (c config) Settings() critic.Settings {
	return critic.Settings{
		APIKey:       c.APIKey,
		Model:        c.Model,
		DraftDir:     c.DraftDir,
		ReferenceDir: c.ReferenceDir,
		Budget:       c.Budget,
		PerFileCap:   c.PerFileCap,
		Mode:         critic.Mode(c.Mode),
		Recursive:    c.Recursive,
	}
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return p
}

// loadSystemPrompt reads the persona override, or returns the default when
// path is empty.
func loadSystemPrompt(path string) (string, error) {
	if path == "" {
		return critic.DefaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("system prompt %s is empty: %w", path, critic.ErrValidation)
	}
	return string(data), nil
}
