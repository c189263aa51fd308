package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sales-assistant/internal/api"
	"sales-assistant/internal/common/camunda"
	"sales-assistant/internal/common/config"
	draftoutreach "sales-assistant/internal/workers/communication/draft-outreach"
	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
	findprospects "sales-assistant/internal/workers/prospecting/find-prospects"
	routerequest "sales-assistant/internal/workers/routing/route-request"
	"sales-assistant/internal/workflow"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP turn API and, when enabled, the workflow-engine job workers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{configPath: cfgFile, logLevel: logLevel})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           api.NewRouter(a.engine, config.GetDuration(a.cfg.Budget.Timeout)*2, a.log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.cfg.Camunda.Enabled {
		stopWorkers, err := a.startWorkers()
		if err != nil {
			return err
		}
		defer stopWorkers()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutdown signal received, stopping", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// jobHandlers maps every job type this process can serve onto its handler.
func (a *app) jobHandlers() map[string]camunda.JobHandler {
	turn := workflow.NewTurnHandler(a.engine, a.log)
	if a.registry != nil {
		turn.WithRegistry(a.registry)
	}
	return map[string]camunda.JobHandler{
		workflow.TaskType:        turn,
		routerequest.TaskType:    a.handlers.router,
		findprospects.TaskType:   a.handlers.prospecting,
		analyzeprospect.TaskType: a.handlers.insights,
		draftoutreach.TaskType:   a.handlers.communication,
	}
}

func (a *app) startWorkers() (func(), error) {
	var client *camunda.Client
	err := retryWithBackoff(func() error {
		var err error
		client, err = camunda.NewClient(a.cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, a.log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}

	var workers []worker.JobWorker
	for taskType, handler := range a.jobHandlers() {
		if !config.IsWorkerEnabled(a.cfg, taskType) {
			a.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		workers = append(workers, camunda.StartWorker(client.GetClient(), taskType, config.GetWorkerConfig(a.cfg, taskType), handler, a.log))
	}
	a.log.Info("job workers registered", map[string]interface{}{"count": len(workers)})

	return func() {
		for _, w := range workers {
			w.Close()
		}
		if err := client.Close(); err != nil {
			a.log.Error("error closing Zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}, nil
}
