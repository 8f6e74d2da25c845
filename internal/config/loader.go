package config

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

var current atomic.Pointer[Config]

var (
	onReloadMu        sync.Mutex
	onReloadCallbacks []func(*Config)
)

// Get returns the current in-memory config (hot-reloaded when the file changes).
func Get() *Config { return current.Load() }

// Set sets the current in-memory config. Used at startup and by the file watcher.
func Set(c *Config) {
	if c != nil {
		current.Store(c)
	}
}

// RegisterOnReload registers a callback that runs after config is hot-reloaded.
func RegisterOnReload(fn func(*Config)) {
	onReloadMu.Lock()
	defer onReloadMu.Unlock()
	onReloadCallbacks = append(onReloadCallbacks, fn)
}

func notifyReload(cfg *Config) {
	onReloadMu.Lock()
	cb := make([]func(*Config), len(onReloadCallbacks))
	copy(cb, onReloadCallbacks)
	onReloadMu.Unlock()
	for _, fn := range cb {
		fn(cfg)
	}
}

//go:embed config.example.yaml
var exampleConfigBytes []byte

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ensureNonNilMaps(&cfg)
	applyLoadDefaults(&cfg)

	return &cfg, nil
}

func ensureNonNilMaps(cfg *Config) {
	if cfg.Agents == nil {
		cfg.Agents = make(map[string]AgentConfig)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
}

func applyLoadDefaults(cfg *Config) {
	if cfg.Gateway.Port <= 0 {
		cfg.Gateway.Port = 19800
	}
	if cfg.Gateway.DefaultAgent == "" {
		cfg.Gateway.DefaultAgent = "default"
	}
}

// LoadFromExample unmarshals the embedded config.example.yaml as the default config.
func LoadFromExample() (*Config, error) {
	expanded := expandEnvVars(string(exampleConfigBytes))
	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse example config: %w", err)
	}
	ensureNonNilMaps(&cfg)
	applyLoadDefaults(&cfg)
	return &cfg, nil
}

func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// ResolveHome returns the AGENTWIRE_HOME directory.
// Priority: AGENTWIRE_HOME env > ~/.agentwire/
func ResolveHome() string {
	if home := os.Getenv("AGENTWIRE_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".agentwire"
	}
	return filepath.Join(userHome, ".agentwire")
}

// ResolveConfigPath finds the config file.
// Priority: --config flag > AGENTWIRE_HOME/config.yaml
func ResolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return filepath.Join(ResolveHome(), "config.yaml")
}

// Path returns the process-wide config file path (ResolveConfigPath("")).
func Path() string {
	return ResolveConfigPath("")
}

// GenerateToken returns a random hex token (32 bytes = 64 chars) for gateway auth.
func GenerateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-token-please-set-gateway-auth-token-in-config"
	}
	return hex.EncodeToString(b)
}

// CreateFromExample writes the embedded config.example.yaml to targetPath
// with the token placeholder replaced by a generated token.
func CreateFromExample(targetPath string) error {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	token := GenerateToken()
	content := strings.ReplaceAll(string(exampleConfigBytes), "${AGENTWIRE_TOKEN}", token)
	if err := os.WriteFile(targetPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Write marshals cfg to YAML and writes it to path. Creates parent directory if needed.
func Write(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ResolveProviderForAgent returns the provider config and model for an agent.
func ResolveProviderForAgent(cfg *Config, agent *AgentConfig) (provider string, model string, provCfg ProviderConfig, err error) {
	if agent.Provider == "" {
		return "", "", ProviderConfig{}, fmt.Errorf("agent has no provider configured")
	}
	provCfg, ok := cfg.Providers[agent.Provider]
	if !ok {
		return "", "", ProviderConfig{}, fmt.Errorf("provider %q not configured", agent.Provider)
	}
	return agent.Provider, agent.Model, provCfg, nil
}
