package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type ForgeEnv struct {
	Token  string `envconfig:"TOKEN" required:"true"`
	APIURL string `envconfig:"API_URL" default:"https://api.github.com"`
	Org    string `envconfig:"ORG"`
	// Timeout bounds each forge API call. A timed-out call counts as a
	// failed outcome, never a hang.
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

type RunEnv struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// Parallel is the number of units reconciled concurrently.
	Parallel int `envconfig:"PARALLEL" default:"1"`
}

type StorageEnv struct {
	// S3Region applies when the entries file or report path is an s3:// URI.
	S3Region string `envconfig:"S3_REGION"`
}

type Env struct {
	ForgeEnv
	RunEnv
	StorageEnv
}

const namespace = "REPOGUILD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *RunEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
