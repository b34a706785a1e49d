// pokeloopd runs the HTTP API server and any agents configured to start
// automatically, backed by a KV store, a blob store, and a vision model
// provider.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fenwick-labs/pokeloop/pkg/api"
	"github.com/fenwick-labs/pokeloop/pkg/blob"
	"github.com/fenwick-labs/pokeloop/pkg/config"
	"github.com/fenwick-labs/pokeloop/pkg/decision"
	"github.com/fenwick-labs/pokeloop/pkg/frame"
	"github.com/fenwick-labs/pokeloop/pkg/kv"
	"github.com/fenwick-labs/pokeloop/pkg/loop"
	"github.com/fenwick-labs/pokeloop/pkg/visionmodel"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables...")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := filepath.Join(*configDir, "pokeloop.yaml")
	cfg, err := config.Load(ctx, cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Printf("starting pokeloopd")
	log.Printf("http port: %s", cfg.HTTPPort)
	log.Printf("config directory: %s", *configDir)

	store, err := newKVStore(cfg)
	if err != nil {
		log.Fatalf("failed to connect to kv store: %v", err)
	}
	log.Println("connected to kv store")

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalf("failed to connect to blob store: %v", err)
	}
	log.Println("connected to blob store")

	client := visionmodel.NewHTTPClient(cfg.ProviderEndpoint, cfg.ProviderAPIKey)

	// The real emulator runtime is an external collaborator (spec.md
	// §4.1): pokeloopd itself only exposes the push-based in-memory
	// Source an extension frame captures into over the HTTP/WS bridge a
	// production deployment fronts this server with.
	source := frame.NewMemorySource()

	now := decision.Clock(time.Now)
	registry := loop.NewRegistry(store, blobs, source, client, now)

	for _, agentCfg := range cfg.Agents {
		registry.CreateAndStart(ctx, agentCfg.ID, agentCfg.ModelID)
		log.Printf("started agent %s (model %s)", agentCfg.ID, agentCfg.ModelID)
	}

	server := api.NewServer(cfg, registry, store, blobs, now)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on :%s", cfg.HTTPPort)
		if err := server.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down...")
	case err := <-errCh:
		log.Printf("http server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down http server: %v", err)
	}
	registry.StopAll()
	log.Println("shutdown complete")
}

func newKVStore(cfg *config.Config) (kv.Store, error) {
	if cfg.KVAddr == "" {
		return kv.NewMemStore(), nil
	}
	return kv.NewRedisStore(cfg.KVAddr, cfg.KVToken)
}

func newBlobStore(cfg *config.Config) (blob.Store, error) {
	if cfg.BlobEndpoint == "" {
		return blob.NewMemStore(cfg.BlobPublicBase), nil
	}
	return blob.NewMinioStore(cfg.BlobEndpoint, cfg.BlobAccessKey, cfg.BlobSecretKey, cfg.BlobBucket, cfg.BlobPublicBase, cfg.BlobUseSSL)
}
