package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/onlyfringe/onlyfringe/internal/config"
	"github.com/onlyfringe/onlyfringe/internal/llm"
	"github.com/onlyfringe/onlyfringe/internal/logger"
	"github.com/onlyfringe/onlyfringe/internal/server"
	"github.com/onlyfringe/onlyfringe/internal/store"
	"github.com/onlyfringe/onlyfringe/internal/verify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults with env overrides", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	lg, err := logger.New(os.Getenv("DEBUG") == "1")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Database.URL, lg)
	if err != nil {
		lg.Error("Failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	if err := st.InitSchema(ctx); err != nil {
		lg.Error("Failed to apply schema", logger.Error(err))
		os.Exit(1)
	}

	aiEnabled := cfg.LLM.APIKey != "" || cfg.LLM.Provider == "ollama"
	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		lg.Error("Failed to initialize LLM client", logger.Error(err))
		os.Exit(1)
	}

	oracle := verify.NewOracle(client, verify.OracleTimeout(cfg.Verification))
	pipeline := verify.NewPipeline(st, oracle, cfg.Verification, lg)

	srv := server.New(pipeline, st, lg, aiEnabled)
	r := srv.SetupRouter()

	lg.Info("Starting server", logger.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		lg.Error("Server exited", logger.Error(err))
		os.Exit(1)
	}
}
