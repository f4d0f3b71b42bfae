package main

import (
	"log"
	"os"

	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/api"
	"github.com/mironism/helsi/internal/auth"
	"github.com/mironism/helsi/internal/config"
	"github.com/mironism/helsi/internal/medical"
	"github.com/mironism/helsi/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	if cfg.StorageBackend == "file" || cfg.StorageBackend == "sqlite" {
		if _, err := os.Stat("data"); os.IsNotExist(err) {
			_ = os.Mkdir("data", 0755)
		}
	}

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	extractor := medical.NewExtractor(cfg, logger)

	var ocr medical.OCRClient
	if cfg.OCRServiceURL != "" {
		ocr = medical.NewRemoteOCRClient(cfg.OCRServiceURL, logger)
	} else {
		ocr = medical.NewSimulatedOCRClient()
	}

	pipeline := medical.NewPipeline(store, extractor, ocr, logger)
	app := api.NewApplication(logger, store, pipeline)

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.AuthToken, logger)
	} else {
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	}

	r := api.NewRouter(app, provider, cfg)

	addr := ":8088"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}
	logger.Infof("server running on %s (storage=%s env=%s)", addr, cfg.StorageBackend, cfg.Env)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
