// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/gamecatalog/internal/config"
	"github.com/tomtom215/gamecatalog/internal/metrics"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects guarded by the policy.
const (
	ObjectGames      = "games"
	ObjectCategories = "categories"
	ObjectReviews    = "reviews"
	ObjectModeration = "moderation"
	ObjectUsers      = "users"
	ObjectBackups    = "backups"
)

// Actions understood by the policy.
const (
	ActionRead     = "read"
	ActionWrite    = "write"
	ActionDelete   = "delete"
	ActionModerate = "moderate"
	ActionAdmin    = "admin"
)

// RoleAnonymous is the subject of requests without credentials.
const RoleAnonymous = "anonymous"

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath is the path to the Casbin model file.
	// If empty, uses embedded model.
	ModelPath string

	// PolicyPath is the path to the Casbin policy file.
	// If empty, uses embedded policy.
	PolicyPath string

	// AutoReload reloads PolicyPath every ReloadInterval.
	AutoReload     bool
	ReloadInterval time.Duration

	CacheEnabled bool
	CacheTTL     time.Duration
}

// EnforcerConfigFrom maps the security configuration onto EnforcerConfig.
func EnforcerConfigFrom(cfg *config.CasbinConfig) *EnforcerConfig {
	return &EnforcerConfig{
		ModelPath:      cfg.ModelPath,
		PolicyPath:     cfg.PolicyPath,
		AutoReload:     cfg.AutoReload,
		ReloadInterval: cfg.ReloadInterval,
		CacheEnabled:   cfg.CacheEnabled,
		CacheTTL:       cfg.CacheTTL,
	}
}

// Enforcer decides whether a role may perform an action on an object.
type Enforcer struct {
	config   *EnforcerConfig
	enforcer *casbin.SyncedEnforcer
	cache    *decisionCache
}

// NewEnforcer loads the model and policy, from files when configured and
// present, otherwise from the embedded defaults.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &EnforcerConfig{CacheEnabled: true, CacheTTL: 5 * time.Minute}
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	fromFile := cfg.PolicyPath != "" && fileExists(cfg.PolicyPath)
	if fromFile {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadEmbeddedPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if cfg.AutoReload && fromFile && cfg.ReloadInterval > 0 {
		enforcer.StartAutoLoadPolicy(cfg.ReloadInterval)
	}

	e := &Enforcer{config: cfg, enforcer: enforcer}
	if cfg.CacheEnabled {
		e.cache = newDecisionCache(cfg.CacheTTL)
	}
	return e, nil
}

// loadEmbeddedPolicy parses policy CSV lines of the form "p, sub, obj, act"
// and "g, role, parent".
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line: %q", line)
		}
	}
	return nil
}

// Enforce checks if role can perform action on object. An empty role is
// treated as anonymous.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	if role == "" {
		role = RoleAnonymous
	}

	if e.cache != nil {
		if allowed, ok := e.cache.get(role, object, action); ok {
			metrics.RecordAuthzDecision(role, object, action, allowed, true)
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.set(role, object, action, allowed)
	}
	metrics.RecordAuthzDecision(role, object, action, allowed, false)
	return allowed, nil
}

// LoadPolicy reloads the file policy and drops cached decisions. It is a
// no-op for the embedded policy.
func (e *Enforcer) LoadPolicy() error {
	if e.config.PolicyPath == "" || !fileExists(e.config.PolicyPath) {
		return nil
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("reload policy: %w", err)
	}
	if e.cache != nil {
		e.cache.clear()
	}
	return nil
}

// Close stops policy reloading and the cache janitor.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
	if e.cache != nil {
		e.cache.stop()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
