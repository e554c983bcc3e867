package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds defaults read from the environment. Command line flags take
// precedence over these values.
type Env struct {
	Style   string `env:"STYLE"`
	Command string `env:"COMMAND"`
	Jobs    int    `env:"JOBS" envDefault:"0"`
}

// EnvPrefix prefixes every variable read into Env.
const EnvPrefix = "RUNFMT_"

// LoadEnv parses Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Prefix: EnvPrefix}); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	if e.Jobs < 0 {
		return Env{}, fmt.Errorf("%sJOBS must not be negative, got %d", EnvPrefix, e.Jobs)
	}
	return e, nil
}
