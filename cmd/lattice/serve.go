package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/latticelabs/lattice"
	"github.com/latticelabs/lattice/internal/config"
	"github.com/latticelabs/lattice/internal/logging"
	httpadapter "github.com/latticelabs/lattice/pkg/adapters/http"
	"github.com/latticelabs/lattice/pkg/adapters/memory"
	"github.com/latticelabs/lattice/pkg/adapters/openrouter"
	"github.com/latticelabs/lattice/pkg/adapters/redis"
	"github.com/latticelabs/lattice/pkg/observability"
	"github.com/latticelabs/lattice/pkg/persistence/middleware"
	"github.com/latticelabs/lattice/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the assistant HTTP server",
	Long:  `Starts the Lattice engine in server mode, exposing the job API and SSE progress streams over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		apiKey, err := cfg.OpenRouterKey()
		if err != nil {
			return err
		}

		logger := logging.NewJSON(slog.LevelInfo)

		var clientOpts []openrouter.Option
		if cfg.OpenRouter.BaseURL != "" {
			clientOpts = append(clientOpts, openrouter.WithBaseURL(cfg.OpenRouter.BaseURL))
		}
		completer := openrouter.New(apiKey, clientOpts...)

		var store ports.JobStore = memory.NewStore()
		if cfg.Redis.Addr != "" {
			redisStore := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redis.WithTTL(cfg.Redis.TTL))
			defer redisStore.Close()
			store = redisStore
			logger.Info("using redis job store", "addr", cfg.Redis.Addr)
		}

		var mws []middleware.Middleware
		if len(cfg.Persistence.PIIPatterns) > 0 {
			mws = append(mws, middleware.NewPIIMiddleware(cfg.Persistence.PIIPatterns))
		}
		if key, err := cfg.EncryptionKey(); err != nil {
			return err
		} else if key != nil {
			mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
			logger.Info("job records encrypted at rest")
		}
		store = middleware.Chain(store, mws...)

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		engine, err := lattice.New(completer,
			lattice.WithLogger(logger),
			lattice.WithStore(store),
			lattice.WithHooks(metrics.Hooks()),
		)
		if err != nil {
			return err
		}

		handler := httpadapter.NewHandler(engine.Jobs(), completer,
			httpadapter.WithLogger(logger),
			httpadapter.WithAPIKeys(cfg.APIKeys),
			httpadapter.WithDefaultModel(cfg.DefaultModel),
		)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: handler,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		group, ctx := errgroup.WithContext(ctx)

		group.Go(func() error {
			logger.Info("starting lattice server", "addr", cfg.Addr, "model", cfg.DefaultModel)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		group.Go(func() error {
			<-ctx.Done()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := group.Wait(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		// Let detached background runs finish before exit.
		engine.Wait()
		logger.Info("lattice server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
