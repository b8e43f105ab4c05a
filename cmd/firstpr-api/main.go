// firstpr-api serves the repository onboarding analysis API.
package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/firstpr/firstpr/analysis"
	"github.com/firstpr/firstpr/compute"
	"github.com/firstpr/firstpr/githubapi"
	"github.com/firstpr/firstpr/httpapi"
	"github.com/firstpr/firstpr/jobs"
	"github.com/firstpr/firstpr/llm"
	"github.com/firstpr/firstpr/pipeline"
	"github.com/firstpr/firstpr/token"
)

func main() {
	loadDotEnv()
	cfg := loadConfig()
	if err := cfg.validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	weights := analysis.DefaultWeights()
	if cfg.WeightsPath != "" {
		w, err := analysis.LoadWeights(cfg.WeightsPath)
		if err != nil {
			log.Fatalf("load weights %s: %v", cfg.WeightsPath, err)
		}
		weights = w
	}

	var store jobs.Store
	switch cfg.StoreDriver {
	case "sqlite":
		s, err := jobs.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("open job store: %v", err)
		}
		defer s.Close()
		store = s
	default:
		store = jobs.NewMemory()
	}

	var estimator token.Estimator = token.Heuristic{}
	if cfg.TokenEncoding != "" {
		t, err := token.NewTiktoken(cfg.TokenEncoding)
		if err != nil {
			log.Printf("tiktoken %s unavailable, using heuristic estimator: %v", cfg.TokenEncoding, err)
		} else {
			estimator = t
		}
	}

	pool := compute.NewPool(cfg.PoolWorkers)
	defer pool.Close()

	fetcher := githubapi.NewClient(cfg.GitHubToken)
	generator := llm.NewClient(cfg.OpenAIKey, cfg.Model)

	orch := &pipeline.Orchestrator{
		Fetch:        fetcher,
		Gen:          generator,
		Store:        store,
		Offload:      pool,
		Estimator:    estimator,
		Weights:      &weights,
		Concurrency:  cfg.Concurrency,
		TokenCeiling: cfg.TokenCeiling,
		MaxFiles:     cfg.MaxFiles,
		ArtifactDir:  cfg.ArtifactDir,
	}

	server := httpapi.Server{
		Orch:  orch,
		Store: store,
		Fetch: fetcher,
	}

	log.Printf("firstpr API listening on %s (store=%s, model=%s)", cfg.Addr, cfg.StoreDriver, cfg.Model)
	if err := http.ListenAndServe(cfg.Addr, server.Router()); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
