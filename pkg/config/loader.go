// Package config fills env-tagged structs from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from the process environment, honouring `env`,
// `envDefault` and `envSeparator` tags.
func Load(cfg any) error {
	return parse(cfg, env.Options{})
}

// LoadFrom populates cfg from environ only. Missing keys fall back to their
// envDefault.
func LoadFrom(cfg any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(cfg, env.Options{Environment: environ})
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
