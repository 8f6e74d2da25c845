package config

type Config struct {
	Gateway   GatewayConfig             `yaml:"gateway" json:"gateway"`
	Agents    map[string]AgentConfig    `yaml:"agents" json:"agents"`
	Providers map[string]ProviderConfig `yaml:"providers" json:"providers"`
	Trace     TraceConfig               `yaml:"trace" json:"trace"`
	Schedule  []JobConfig               `yaml:"schedule" json:"schedule"`
}

type GatewayConfig struct {
	Port         int        `yaml:"port" json:"port"`
	Auth         AuthConfig `yaml:"auth" json:"auth"`
	DefaultAgent string     `yaml:"defaultAgent" json:"defaultAgent"` // agent used when requests name none
}

type AuthConfig struct {
	Token string `yaml:"token" json:"token"`
}

type AgentConfig struct {
	Provider     string `yaml:"provider" json:"provider"` // key into providers
	Model        string `yaml:"model" json:"model"`
	Instructions string `yaml:"instructions" json:"instructions"`
	MaxTokens    int    `yaml:"maxTokens" json:"maxTokens"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"apiKey" json:"apiKey"`
	BaseURL string `yaml:"baseURL" json:"baseURL"`
	Type    string `yaml:"type" json:"type"` // "openai" | "anthropic" (default: inferred from provider name)
}

// ClientType returns which LLM client to use for this provider.
func (p ProviderConfig) ClientType(providerName string) string {
	if p.Type != "" {
		return p.Type
	}
	if providerName == "anthropic" {
		return "anthropic"
	}
	return "openai"
}

type TraceConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Endpoint string `yaml:"endpoint" json:"endpoint"` // OTLP HTTP endpoint host:port
	URLPath  string `yaml:"urlPath" json:"urlPath"`
	APIKey   string `yaml:"apiKey" json:"apiKey"`
}

// JobConfig is one scheduled run: a cron expression plus the prompt to
// deliver to an agent.
type JobConfig struct {
	Name   string `yaml:"name" json:"name"`
	Cron   string `yaml:"cron" json:"cron"`
	Agent  string `yaml:"agent" json:"agent"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Port:         19800,
			DefaultAgent: "default",
		},
		Agents: map[string]AgentConfig{
			"default": {
				Provider: "openai",
				Model:    "gpt-4o-mini",
			},
		},
		Providers: map[string]ProviderConfig{},
	}
}
