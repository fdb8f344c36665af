// Package config loads credible's YAML configuration: the secret set, the
// storage backend, and optional inline exposures. Multiple config files
// may be loaded and merged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kclejeune/credible/internal/exposure"
	"github.com/kclejeune/credible/internal/secret"
)

// StorageType discriminates the storage tagged union.
type StorageType string

const (
	StorageS3         StorageType = "S3"
	StorageRedis      StorageType = "Redis"
	StorageFilesystem StorageType = "Filesystem"
)

// StorageConfig is the `storage:` key: a tagged union on Type.
type StorageConfig struct {
	Type StorageType `yaml:"type"`

	// S3 fields.
	Bucket   string `yaml:"bucket,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`

	// Redis fields.
	Addr      string `yaml:"addr,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// Filesystem fields.
	Root string `yaml:"root,omitempty"`
}

// Config is the top-level YAML config shape: `secrets`, `storage`, and
// optional `exposures`.
type Config struct {
	Secrets   []secretYAML         `yaml:"secrets"`
	Storage   StorageConfig        `yaml:"storage"`
	Exposures exposure.MountConfig `yaml:"exposures,omitempty"`
}

// secretYAML mirrors one `secrets[]` entry, accepting both snake_case and
// camelCase spellings for fields the spec names two ways.
type secretYAML struct {
	Name            string   `yaml:"name"`
	EncryptionKeys  []string `yaml:"encryption_keys"`
	EncryptionKeys2 []string `yaml:"encryptionKeys"`
	Path            string   `yaml:"path"`
	MountPath       string   `yaml:"mount_path"`
	MountPath2      string   `yaml:"mountPath"`
	OwnerUser       string   `yaml:"owner_user"`
	OwnerUser2      string   `yaml:"ownerUser"`
	OwnerGroup      string   `yaml:"owner_group"`
	OwnerGroup2     string   `yaml:"ownerGroup"`
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func firstNonEmptyStr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (s secretYAML) toSecret() secret.Secret {
	return secret.Secret{
		Name:       s.Name,
		Key:        s.Path,
		Recipients: firstNonEmpty(s.EncryptionKeys, s.EncryptionKeys2),
		MountPath:  firstNonEmptyStr(s.MountPath, s.MountPath2),
		OwnerUser:  firstNonEmptyStr(s.OwnerUser, s.OwnerUser2),
		OwnerGroup: firstNonEmptyStr(s.OwnerGroup, s.OwnerGroup2),
	}
}

// Load reads and parses every path in paths and merges the results:
// secrets append (duplicate names are not checked here; SecretSet rejects
// them), storage must be configured by at most one file, and each secret's
// exposure specs are appended in file order. The exposure builder's
// duplicate checks run later, when the caller feeds Exposures to it.
func Load(paths []string) (*Config, error) {
	merged := &Config{}
	var storageSet bool

	for _, path := range paths {
		data, err := os.ReadFile(ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}

		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", path, err)
		}

		merged.Secrets = append(merged.Secrets, cfg.Secrets...)

		if cfg.Storage.Type != "" {
			if storageSet {
				return nil, fmt.Errorf("config %q: storage already configured by an earlier file", path)
			}
			merged.Storage = cfg.Storage
			storageSet = true
		}

		if merged.Exposures == nil {
			merged.Exposures = make(exposure.MountConfig)
		}
		for name, specs := range cfg.Exposures {
			merged.Exposures[name] = append(merged.Exposures[name], specs...)
		}
	}

	return merged, nil
}

// SecretSet converts the parsed YAML secret list to the domain secret.Set,
// rejecting duplicate names.
func (c *Config) SecretSet() (secret.Set, error) {
	secrets := make([]secret.Secret, 0, len(c.Secrets))
	for _, s := range c.Secrets {
		secrets = append(secrets, s.toSecret())
	}
	return secret.BuildSet(secrets)
}

// Validate checks the storage configuration is well-formed for its type.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage type S3 requires bucket")
		}
	case StorageRedis:
		if c.Storage.Addr == "" {
			return fmt.Errorf("storage type Redis requires addr")
		}
	case StorageFilesystem:
		if c.Storage.Root == "" {
			return fmt.Errorf("storage type Filesystem requires root")
		}
	case "":
		return fmt.Errorf("no storage configured")
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}
	return nil
}

// ExpandPath expands a leading ~/ to the user's home directory and
// expands environment variable references.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/credible/config.yaml or
// ~/.config/credible/config.yaml.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "credible", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "credible", "config.yaml")
}
