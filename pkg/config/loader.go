package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads path, expands environment variables, parses it into a
// YAMLConfig, applies defaults, validates, and returns a ready-to-use
// Config. Mirrors tarsy's pkg/config.Initialize pipeline (load → expand
// env → parse → defaults → validate), generalized to this module's much
// smaller surface.
func Load(ctx context.Context, path string) (*Config, error) {
	log := slog.With("config_path", path)
	log.Info("loading configuration")

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	expanded := ExpandEnv(raw)

	var doc YAMLConfig
	if err := yaml.Unmarshal(expanded, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("parsing YAML: %w", err)}
	}

	applyDefaults(&doc)

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort: doc.HTTP.Port,
		GinMode:  doc.HTTP.GinMode,

		KVAddr:  doc.KV.Addr,
		KVToken: doc.KV.Token,

		BlobEndpoint:   doc.Blob.Endpoint,
		BlobAccessKey:  doc.Blob.AccessKey,
		BlobSecretKey:  doc.Blob.SecretKey,
		BlobBucket:     doc.Blob.Bucket,
		BlobPublicBase: doc.Blob.PublicBase,
		BlobUseSSL:     doc.Blob.UseSSL,

		ProviderEndpoint: doc.Provider.Endpoint,
		ProviderAPIKey:   doc.Provider.APIKey,
		ProviderKeys:     doc.Provider.Keys,

		Agents: doc.Agents,
	}

	log.Info("configuration loaded", "agents", len(cfg.Agents))
	return cfg, nil
}

func applyDefaults(doc *YAMLConfig) {
	if doc.HTTP.GinMode == "" {
		doc.HTTP.GinMode = "release"
	}
}
