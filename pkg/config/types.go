package config

// YAMLConfig is the on-disk shape of pokeloop.yaml. Everything here can
// be overridden or filled in from the environment by ExpandEnv before
// parsing, so secrets never need to live in the file itself.
type YAMLConfig struct {
	HTTP     HTTPYAMLConfig     `yaml:"http"`
	KV       KVYAMLConfig       `yaml:"kv"`
	Blob     BlobYAMLConfig     `yaml:"blob"`
	Provider ProviderYAMLConfig `yaml:"provider"`
	Agents   []AgentYAMLConfig  `yaml:"agents" validate:"dive"`
}

// HTTPYAMLConfig holds the API server's listen settings.
type HTTPYAMLConfig struct {
	Port    string `yaml:"port" validate:"required"`
	GinMode string `yaml:"gin_mode,omitempty"`
}

// KVYAMLConfig holds the key-value store connection, per spec.md §6
// ("KV endpoint and token").
type KVYAMLConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token,omitempty"`
}

// BlobYAMLConfig holds the blob store connection, per spec.md §6
// ("blob token").
type BlobYAMLConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key,omitempty"`
	SecretKey  string `yaml:"secret_key,omitempty"`
	Bucket     string `yaml:"bucket" validate:"required_with=Endpoint"`
	PublicBase string `yaml:"public_base,omitempty"`
	UseSSL     bool   `yaml:"use_ssl"`
}

// ProviderYAMLConfig holds the vision model provider's endpoint and
// optional per-provider API keys, per spec.md §6 ("optional
// per-provider model keys").
type ProviderYAMLConfig struct {
	Endpoint string            `yaml:"endpoint"`
	APIKey   string            `yaml:"api_key,omitempty"`
	Keys     map[string]string `yaml:"keys,omitempty"`
}

// AgentYAMLConfig is one agent to launch at startup, alongside any agents
// created later via the HTTP API.
type AgentYAMLConfig struct {
	ID      string `yaml:"id" validate:"required"`
	ModelID string `yaml:"model_id" validate:"required"`
}

// Config is the fully loaded, validated, ready-to-use configuration the
// rest of the module consumes. It never carries YAML struct tags; those
// belong to YAMLConfig alone.
type Config struct {
	HTTPPort string
	GinMode  string

	KVAddr  string
	KVToken string

	BlobEndpoint   string
	BlobAccessKey  string
	BlobSecretKey  string
	BlobBucket     string
	BlobPublicBase string
	BlobUseSSL     bool

	ProviderEndpoint string
	ProviderAPIKey   string
	ProviderKeys     map[string]string

	Agents []AgentYAMLConfig
}
