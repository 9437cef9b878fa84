package config

import (
	"fmt"
	"strings"
)

// Deployment environments
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var environmentAliases = map[string]string{
	"":      EnvDevelopment,
	"dev":   EnvDevelopment,
	"local": EnvDevelopment,
	"stage": EnvStaging,
	"prod":  EnvProduction,
}

// NormalizeEnvironment lowercases env and maps short aliases onto the
// canonical names. An empty value means development.
func NormalizeEnvironment(env string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if canonical, ok := environmentAliases[env]; ok {
		return canonical
	}
	return env
}

// IsProductionLike reports whether env must run with hardened settings:
// real secrets, a real database and broker, persistent photo storage.
func IsProductionLike(env string) bool {
	return env == EnvStaging || env == EnvProduction
}

func checkEnvironment(env string) error {
	switch env {
	case EnvDevelopment, EnvTest, EnvStaging, EnvProduction:
		return nil
	}
	return fmt.Errorf("unknown environment %q", env)
}
