// Command worker runs the Temporal worker that hosts the company-validation
// workflow and its activities.
package main

import (
	"log/slog"
	"os"

	sdkclient "go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/onboarding-cl/company-validation/internal/worker"
	"github.com/onboarding-cl/company-validation/internal/workflow"
	"github.com/onboarding-cl/company-validation/pkg/events"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := worker.FromEnv()

	c, err := sdkclient.Dial(sdkclient.Options{
		HostPort:  cfg.TemporalHostPort,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		logger.Error("temporal dial failed", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	w := sdkworker.New(c, workflow.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, worker.NewComponents(cfg, events.NewLogSink(logger)))

	logger.Info("worker starting",
		"task_queue", workflow.TaskQueue, "namespace", cfg.TemporalNamespace)
	if err := w.Run(sdkworker.InterruptCh()); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
