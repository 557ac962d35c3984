package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/project-matcher/internal/ai"
	"github.com/spigell/project-matcher/internal/filtering"
	"github.com/spigell/project-matcher/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve project matching over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", "", "address to listen on (default :8081)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the project-matcher server", zap.String("version", version))

	lang, err := ai.ParseLanguage(config.AI.Language)
	if err != nil {
		logger.Fatal("parsing output language", zap.Error(err))
	}

	source, err := newCatalogSource(config.Catalog, logger)
	if err != nil {
		logger.Fatal("preparing the catalog", zap.Error(err))
	}

	matcher, mode, err := newMatcher(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building ai matcher", zap.Error(err))
	}

	steps := func() []filtering.Filter {
		return filterSteps(config.Catalog)
	}

	srv := server.New(server.Config{
		Listen:    config.Server.Listen,
		RateLimit: config.Server.RateLimit,
		Language:  lang,
		Mode:      string(mode),
		Filters:   *filterConfig(config.Catalog),
		Steps:     steps,
		Profile:   config.Profile,
	}, matcher, source, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
