package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tempo/internal/config"
	"tempo/internal/engine"
	"tempo/internal/server"
	"tempo/internal/state"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("TEMPO_CONFIG")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	eng.StartPersistTimer()
	defer eng.Stop()

	srv := server.New(eng, VersionString(), logger)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("tempo serving", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// buildEngine resolves the state path and constructs the engine over it.
func buildEngine(cfg config.Config, logger *zap.Logger) (*engine.Engine, error) {
	statePath := cfg.State.Path
	if statePath == "" {
		var err error
		statePath, err = state.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve state path: %w", err)
		}
	}

	store, err := state.NewStore(statePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return engine.New(cfg, store, logger), nil
}
