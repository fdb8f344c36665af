package main

import (
	"context"
	"fmt"

	"github.com/kclejeune/credible/internal/config"
	"github.com/kclejeune/credible/internal/cryptoio"
	"github.com/kclejeune/credible/internal/secretmanager"
	"github.com/kclejeune/credible/internal/store"
)

// buildManager loads configuration, credentials, and identities, constructs
// the configured store driver, and returns a ready-to-use secret manager.
// Every subcommand that touches the store or crypto pipeline goes through
// this one path.
func buildManager(ctx context.Context) (*secretmanager.Manager, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load([]string{path})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	credPath := credFile
	if credPath == "" {
		credPath = config.DefaultCredentialsPath()
	}
	if err := config.LoadCredentials(credPath); err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	secrets, err := cfg.SecretSet()
	if err != nil {
		return nil, fmt.Errorf("building secret set: %w", err)
	}

	paths := identPaths
	if len(paths) == 0 {
		paths = cryptoio.DefaultIdentityPaths()
	}
	identities, err := cryptoio.LoadIdentities(paths)
	if err != nil {
		return nil, fmt.Errorf("loading identities: %w", err)
	}

	st, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("constructing store: %w", err)
	}

	return &secretmanager.Manager{Store: st, Identities: identities, Secrets: secrets}, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Type {
	case config.StorageS3:
		return store.NewS3(ctx, store.S3Config{Bucket: cfg.Bucket, Region: cfg.Region, Endpoint: cfg.Endpoint})
	case config.StorageRedis:
		return store.NewRedis(store.RedisConfig{Addr: cfg.Addr, DB: cfg.DB, KeyPrefix: cfg.KeyPrefix})
	case config.StorageFilesystem:
		return store.NewFilesystem(store.FilesystemConfig{Root: cfg.Root})
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", cfg.Type)
	}
}
