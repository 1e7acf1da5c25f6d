package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studybuddy/internal/api"
	"studybuddy/internal/common/camunda"
	"studybuddy/internal/common/config"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/common/observability"
	createsubmission "studybuddy/internal/workers/intake/create-submission"
	generatesuggestion "studybuddy/internal/workers/intake/generate-suggestion"
	scorepreinterview "studybuddy/internal/workers/intake/score-pre-interview"
	sendnotification "studybuddy/internal/workers/intake/send-notification"
	validateintake "studybuddy/internal/workers/intake/validate-intake"
	updateassignment "studybuddy/internal/workers/review/update-assignment"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the Zeebe job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.address")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting studybuddy", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"database":    cfg.Database.Driver,
		"provider":    cfg.APIs.Provider,
	})

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	app, err := buildApplication(ctx, cfg, log, obs)
	if err != nil {
		return err
	}
	defer app.Close()

	server := api.New(app.apiDeps(), requestTimeout(cfg), log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Listen(cfg.Server.Address)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Info("Shutdown signal received, stopping HTTP server", nil)
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Camunda.Enabled {
		g.Go(func() error {
			return runWorkers(gctx, cfg, app, log)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("studybuddy stopped with error", map[string]interface{}{"error": err.Error()})
		return err
	}
	log.Info("studybuddy stopped gracefully", nil)
	return nil
}

// runWorkers opens one job worker per task type and holds them until ctx ends.
func runWorkers(ctx context.Context, cfg *config.Config, app *application, log logger.Logger) error {
	client, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		return err
	}
	defer client.Close()

	set := camunda.NewWorkerSet(client.Raw(), log)
	handlers := map[string]camunda.JobHandler{
		validateintake.TaskType:     app.validate,
		scorepreinterview.TaskType:  app.score,
		generatesuggestion.TaskType: app.suggest,
		createsubmission.TaskType:   app.create,
		sendnotification.TaskType:   app.notify,
		updateassignment.TaskType:   app.assign,
	}
	started := 0
	for taskType, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if wcfg.MaxJobsActive == 0 {
			wcfg.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if set.Start(taskType, wcfg, h) {
			started++
		}
	}
	log.Info("Zeebe workers registered", map[string]interface{}{"count": started})

	<-ctx.Done()
	set.Stop()
	return nil
}
