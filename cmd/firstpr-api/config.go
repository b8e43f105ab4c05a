package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

type serverConfig struct {
	Addr        string
	GitHubToken string
	OpenAIKey   string
	Model       string

	StoreDriver string // "memory" or "sqlite"
	SQLitePath  string
	ArtifactDir string
	WeightsPath string

	Concurrency   int
	TokenCeiling  int
	MaxFiles      int
	PoolWorkers   int
	TokenEncoding string // tiktoken encoding name, empty for the chars/4 heuristic
}

func loadConfig() serverConfig {
	return serverConfig{
		Addr:          getenv("FIRSTPR_ADDR", ":8000"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:         getenv("FIRSTPR_MODEL", "gpt-5-mini"),
		StoreDriver:   getenv("FIRSTPR_STORE", "memory"),
		SQLitePath:    getenv("FIRSTPR_SQLITE_PATH", "firstpr-jobs.db"),
		ArtifactDir:   os.Getenv("FIRSTPR_ARTIFACT_DIR"),
		WeightsPath:   os.Getenv("FIRSTPR_WEIGHTS_FILE"),
		Concurrency:   getenvInt("FIRSTPR_CONCURRENCY", 10),
		TokenCeiling:  getenvInt("FIRSTPR_TOKEN_CEILING", 100_000),
		MaxFiles:      getenvInt("FIRSTPR_MAX_FILES", 60),
		PoolWorkers:   getenvInt("FIRSTPR_POOL_WORKERS", 4),
		TokenEncoding: os.Getenv("FIRSTPR_TOKEN_ENCODING"),
	}
}

func (c serverConfig) validate() error {
	if c.OpenAIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	switch c.StoreDriver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("FIRSTPR_STORE must be memory or sqlite, got %q", c.StoreDriver)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
