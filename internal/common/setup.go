package common

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"bonding-rewards-go/internal/api"
	"bonding-rewards-go/internal/database"
	"bonding-rewards-go/internal/engine"
	"bonding-rewards-go/internal/formance"
	"bonding-rewards-go/internal/memory"
	"bonding-rewards-go/internal/models"
	"bonding-rewards-go/internal/prime"
	"bonding-rewards-go/internal/store"

	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		// Only log if the file exists but couldn't be read
		// (godotenv returns an error if .env doesn't exist)
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Store  store.Store
	Engine *engine.Engine
	Api    *api.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	s, err := InitializeStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Services{
		Store:  s,
		Engine: engine.New(s),
		Api:    api.NewService(s, cfg.Platform.Decimals),
	}, nil
}

// InitializeStore opens the backend selected by cfg.Store.Backend. The
// formance backend keeps its records in the SQLite database.
func InitializeStore(ctx context.Context, cfg *models.Config) (store.Store, error) {
	zap.L().Info("Initializing store", zap.String("backend", cfg.Store.Backend))

	switch cfg.Store.Backend {
	case "memory":
		zap.L().Warn("Using the in-memory store; state is lost on exit")
		return memory.NewStore(), nil
	case "formance":
		records, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		ledger, err := formance.NewService(ctx, cfg.Formance, records)
		if err != nil {
			records.Close()
			return nil, err
		}
		return ledger, nil
	case "sqlite", "":
		db, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

// InitializePrime connects to Prime and resolves the named portfolio
func InitializePrime(ctx context.Context, portfolioName string) (*prime.Service, *models.Portfolio, error) {
	zap.L().Info("Loading Prime API credentials")
	creds, err := loadPrimeCredentials()
	if err != nil {
		return nil, nil, err
	}

	primeService, err := prime.NewService(creds)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("Finding funding portfolio", zap.String("name", portfolioName))
	portfolio, err := primeService.FindPortfolio(ctx, portfolioName)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("Using portfolio",
		zap.String("name", portfolio.Name),
		zap.String("id", portfolio.Id))

	return primeService, portfolio, nil
}

func loadPrimeCredentials() (*credentials.Credentials, error) {
	accessKey := os.Getenv("PRIME_ACCESS_KEY")
	passphrase := os.Getenv("PRIME_PASSPHRASE")
	signingKey := os.Getenv("PRIME_SIGNING_KEY")

	if accessKey == "" || passphrase == "" || signingKey == "" {
		return nil, fmt.Errorf("missing required Prime API credentials: PRIME_ACCESS_KEY, PRIME_PASSPHRASE, PRIME_SIGNING_KEY")
	}

	return &credentials.Credentials{
		AccessKey:  accessKey,
		Passphrase: passphrase,
		SigningKey: signingKey,
	}, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
