// Package config loads the YAML configuration that drives
// cmd/containerfs: path expansion and optional secret-backed value
// expansion.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

// Config describes one container filesystem instance.
type Config struct {
	// Path is the backing file's location on disk.
	Path string `yaml:"path"`
	// Capacity is the total backing file size in bytes, including the
	// 8-byte prefix. Only consulted when the backing file does not yet
	// exist.
	Capacity int32 `yaml:"capacity"`
	// Cache enables the optional name->offset directory cache.
	Cache bool `yaml:"cache"`
	// CacheSnapshotPath, when set, persists the cache across restarts.
	CacheSnapshotPath string `yaml:"cacheSnapshotPath,omitempty"`
	// DownloadToken is a template for the bearer token downloadAndSave
	// presents to authenticated endpoints, e.g. "$Password" or a literal
	// value. Left untouched unless DownloadSecret names a resource to
	// expand it against.
	DownloadToken string `yaml:"downloadToken,omitempty"`
	// DownloadSecret names a github.com/viant/scy secret resource used
	// to expand DownloadToken. Empty means DownloadToken is used as-is.
	DownloadSecret string `yaml:"downloadSecret,omitempty"`

	// downloadToken holds the effective, expanded value.
	downloadToken string
}

// Load reads and validates a YAML config file at path, expanding
// ~-prefixed paths and resolving DownloadSecret through
// github.com/viant/scy if set.
func Load(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("config: %s: path is required", path)
	}
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("config: %s: capacity must be positive", path)
	}
	if expanded, err := expandUserPath(cfg.Path); err == nil {
		cfg.Path = expanded
	}
	if cfg.CacheSnapshotPath != "" {
		if expanded, err := expandUserPath(cfg.CacheSnapshotPath); err == nil {
			cfg.CacheSnapshotPath = expanded
		}
	}

	cfg.downloadToken = cfg.DownloadToken
	if strings.TrimSpace(cfg.DownloadSecret) != "" {
		expanded, err := expandWithSecret(context.Background(), cfg.DownloadToken, cfg.DownloadSecret)
		if err != nil {
			return nil, fmt.Errorf("config: %s: download secret: %w", path, err)
		}
		cfg.downloadToken = expanded
	}

	return &cfg, nil
}

// ResolvedDownloadToken returns the effective bearer token for
// downloadAndSave, or "" if none was configured.
func (c *Config) ResolvedDownloadToken() string { return c.downloadToken }

// expandWithSecret expands template against the named secret resource.
func expandWithSecret(ctx context.Context, template, secretRef string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("secret %q provided but downloadToken is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(template), nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return path, nil
	}
	if !strings.HasPrefix(trimmed, "~/") && trimmed != "~" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(trimmed, "~")), nil
}
